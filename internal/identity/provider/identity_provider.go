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

package provider

import (
	"github.com/wso2/identity-contact-resolution-service/internal/identity/engine"
	"github.com/wso2/identity-contact-resolution-service/internal/identity/service"
)

// IdentityProviderInterface defines the interface for the identity provider.
type IdentityProviderInterface interface {
	GetIdentityService() service.IdentityServiceInterface
	GetUnionFindEngine() engine.UnionFindEngineInterface
}

// IdentityProvider is the default implementation of the IdentityProviderInterface.
type IdentityProvider struct{}

// NewIdentityProvider creates a new instance of IdentityProvider.
func NewIdentityProvider() IdentityProviderInterface {

	return &IdentityProvider{}
}

// GetIdentityService returns the identity service instance.
func (ip *IdentityProvider) GetIdentityService() service.IdentityServiceInterface {

	return service.GetIdentityService()
}

// GetUnionFindEngine returns the union-find engine instance.
func (ip *IdentityProvider) GetUnionFindEngine() engine.UnionFindEngineInterface {

	return engine.GetUnionFindEngine()
}
