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
	contactModel "github.com/wso2/identity-contact-resolution-service/internal/contact/model"
	"github.com/wso2/identity-contact-resolution-service/internal/identity/model"
)

// BuildIdentitySummary consolidates a group's contacts into a single view.
// Contacts must arrive in ascending id order; the root is the minimal id,
// so its values always lead the email and phone lists. Identifiers are
// deduplicated in order of first appearance.
func BuildIdentitySummary(rootId int64, contacts []contactModel.Contact) model.IdentitySummary {

	summary := model.IdentitySummary{
		PrimaryContactID:    rootId,
		Emails:              []string{},
		PhoneNumbers:        []string{},
		SecondaryContactIDs: []int64{},
	}

	seenEmails := make(map[string]bool)
	seenPhones := make(map[string]bool)

	for _, contact := range contacts {
		if contact.Email != nil && !seenEmails[*contact.Email] {
			seenEmails[*contact.Email] = true
			summary.Emails = append(summary.Emails, *contact.Email)
		}
		if contact.PhoneNumber != nil && !seenPhones[*contact.PhoneNumber] {
			seenPhones[*contact.PhoneNumber] = true
			summary.PhoneNumbers = append(summary.PhoneNumbers, *contact.PhoneNumber)
		}
		if contact.ContactID != rootId {
			summary.SecondaryContactIDs = append(summary.SecondaryContactIDs, contact.ContactID)
		}
	}

	return summary
}
