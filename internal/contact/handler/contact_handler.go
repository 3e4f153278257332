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

package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/wso2/identity-contact-resolution-service/internal/contact/provider"
	errors2 "github.com/wso2/identity-contact-resolution-service/internal/system/errors"
	"github.com/wso2/identity-contact-resolution-service/internal/system/utils"
)

// ContactHandler serves read access to stored contact records.
type ContactHandler struct{}

// NewContactHandler creates a new instance of ContactHandler.
func NewContactHandler() *ContactHandler {

	return &ContactHandler{}
}

// HandleGetContact fetches a single contact by the id path segment.
func (ch *ContactHandler) HandleGetContact(w http.ResponseWriter, r *http.Request) {

	pathParts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")
	idSegment := pathParts[len(pathParts)-1]

	contactId, err := strconv.ParseInt(idSegment, 10, 64)
	if err != nil {
		clientError := errors2.NewClientError(errors2.INVALID_CONTACT_ID, http.StatusBadRequest)
		utils.WriteErrorResponse(w, clientError)
		return
	}

	contactService := provider.NewContactProvider().GetContactService()
	contact, err := contactService.GetContact(contactId)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, contact)
}

// HandleListContacts lists every stored contact in ascending id order.
func (ch *ContactHandler) HandleListContacts(w http.ResponseWriter, r *http.Request) {

	contactService := provider.NewContactProvider().GetContactService()
	contacts, err := contactService.GetAllContacts()
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, contacts)
}
