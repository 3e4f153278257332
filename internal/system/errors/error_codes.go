/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
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

package errors

const errorPrefix = "ICR-"

var (
	// Server error codes

	DB_CLIENT_INIT = ErrorMessage{
		Code:    errorPrefix + "15001",
		Message: "Unable to initialize database client.",
	}

	ADD_CONTACT = ErrorMessage{
		Code:    errorPrefix + "15002",
		Message: "Error while adding contact.",
	}

	GET_CONTACT = ErrorMessage{
		Code:    errorPrefix + "15003",
		Message: "Error while fetching contact(s).",
	}

	ADD_IDENTITY_GROUP = ErrorMessage{
		Code:    errorPrefix + "15004",
		Message: "Error while creating identity group.",
	}

	GET_IDENTITY_GROUP = ErrorMessage{
		Code:    errorPrefix + "15005",
		Message: "Error while fetching identity group.",
	}

	MERGE_IDENTITY_GROUPS = ErrorMessage{
		Code:    errorPrefix + "15006",
		Message: "Error while merging identity groups.",
	}

	INVALID_GROUP_STATE = ErrorMessage{
		Code:    errorPrefix + "15007",
		Message: "Identity group state violates the partition contract.",
	}

	LOCK_ACQUIRE = ErrorMessage{
		Code:    errorPrefix + "15008",
		Message: "Advisory lock acquisition failed.",
	}

	LOCK_RELEASE = ErrorMessage{
		Code:    errorPrefix + "15009",
		Message: "Error while releasing the lock.",
	}

	LOCK_KEY_GEN = ErrorMessage{
		Code:    errorPrefix + "15010",
		Message: "Error generating advisory lock key.",
	}

	LOCK_RESULT_INVALID = ErrorMessage{
		Code:    errorPrefix + "15011",
		Message: "Invalid response from advisory lock query.",
	}

	MARSHAL_JSON = ErrorMessage{
		Code:    errorPrefix + "15012",
		Message: "Error while marshalling JSON.",
	}

	UNMARSHAL_JSON = ErrorMessage{
		Code:    errorPrefix + "15013",
		Message: "Error while un-marshalling JSON.",
	}

	// Client error codes

	BAD_REQUEST = ErrorMessage{
		Code:    errorPrefix + "11001",
		Message: "Invalid body format.",
	}

	MISSING_IDENTIFIERS = ErrorMessage{
		Code:        errorPrefix + "11002",
		Message:     "Missing identifiers.",
		Description: "At least one of email or phoneNumber must be provided.",
	}

	CONTACT_NOT_FOUND = ErrorMessage{
		Code:        errorPrefix + "11003",
		Message:     "Contact not found.",
		Description: "No contact record found for the given contact_id.",
	}

	LINKED_CONTACT_NOT_FOUND = ErrorMessage{
		Code:        errorPrefix + "11004",
		Message:     "Linked contact not found.",
		Description: "The linked_id does not reference an existing contact.",
	}

	MISSING_LINKED_ID = ErrorMessage{
		Code:        errorPrefix + "11005",
		Message:     "Missing linked_id.",
		Description: "A secondary contact must reference an existing contact via linked_id.",
	}

	RESOLUTION_UNAVAILABLE = ErrorMessage{
		Code:        errorPrefix + "11006",
		Message:     "Identity resolution temporarily unavailable.",
		Description: "The resolution lost repeated concurrency races. Retry the request.",
	}

	INVALID_CONTACT_ID = ErrorMessage{
		Code:    errorPrefix + "11007",
		Message: "Invalid contact id.",
	}
)
