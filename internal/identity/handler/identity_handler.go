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
	"encoding/json"
	"net/http"

	contactModel "github.com/wso2/identity-contact-resolution-service/internal/contact/model"
	"github.com/wso2/identity-contact-resolution-service/internal/identity/model"
	"github.com/wso2/identity-contact-resolution-service/internal/identity/provider"
	syscontext "github.com/wso2/identity-contact-resolution-service/internal/system/context"
	errors2 "github.com/wso2/identity-contact-resolution-service/internal/system/errors"
	"github.com/wso2/identity-contact-resolution-service/internal/system/utils"
)

// IdentityHandler serves identity resolution requests.
type IdentityHandler struct{}

// NewIdentityHandler creates a new instance of IdentityHandler.
func NewIdentityHandler() *IdentityHandler {

	return &IdentityHandler{}
}

// HandleIdentify resolves the posted identifiers to a consolidated identity.
func (ih *IdentityHandler) HandleIdentify(w http.ResponseWriter, r *http.Request) {

	var request model.ResolveRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		clientError := errors2.NewClientErrorWithTraceID(errors2.ErrorMessage{
			Code:        errors2.BAD_REQUEST.Code,
			Message:     errors2.BAD_REQUEST.Message,
			Description: utils.HandleDecodeError(err, "identify"),
		}, http.StatusBadRequest, syscontext.GetTraceID(r.Context()))
		utils.WriteErrorResponse(w, clientError)
		return
	}

	identityService := provider.NewIdentityProvider().GetIdentityService()
	summary, err := identityService.Resolve(request)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, model.ResolveResponse{Contact: *summary})
}

// HandleIngest stores a new contact record and links it to any identities
// sharing its identifiers.
func (ih *IdentityHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {

	var request contactModel.ContactRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		clientError := errors2.NewClientErrorWithTraceID(errors2.ErrorMessage{
			Code:        errors2.BAD_REQUEST.Code,
			Message:     errors2.BAD_REQUEST.Message,
			Description: utils.HandleDecodeError(err, "contact"),
		}, http.StatusBadRequest, syscontext.GetTraceID(r.Context()))
		utils.WriteErrorResponse(w, clientError)
		return
	}

	identityService := provider.NewIdentityProvider().GetIdentityService()
	contact, err := identityService.Ingest(request)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, contact)
}
