/*
 * Copyright (c) 2026, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package service

import (
	"net/http"

	"github.com/wso2/identity-contact-resolution-service/internal/contact/model"
	"github.com/wso2/identity-contact-resolution-service/internal/contact/store"
	errors2 "github.com/wso2/identity-contact-resolution-service/internal/system/errors"
)

// ContactServiceInterface exposes read access to stored contact records.
type ContactServiceInterface interface {
	GetContact(contactId int64) (*model.Contact, error)
	GetAllContacts() ([]model.Contact, error)
}

// ContactService is the default implementation of ContactServiceInterface.
type ContactService struct{}

var contactServiceInstance = &ContactService{}

// GetContactService returns the contact service.
func GetContactService() ContactServiceInterface {

	return contactServiceInstance
}

// GetContact fetches a single contact record by id.
func (s *ContactService) GetContact(contactId int64) (*model.Contact, error) {

	if contactId <= 0 {
		return nil, errors2.NewClientError(errors2.INVALID_CONTACT_ID, http.StatusBadRequest)
	}

	contact, err := store.GetContact(contactId)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, errors2.NewClientError(errors2.CONTACT_NOT_FOUND, http.StatusNotFound)
	}
	return contact, nil
}

// GetAllContacts lists every stored contact record.
func (s *ContactService) GetAllContacts() ([]model.Contact, error) {

	return store.GetAllContacts()
}
