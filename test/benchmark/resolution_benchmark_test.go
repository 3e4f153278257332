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

package benchmark

import (
	"fmt"
	"testing"
	"time"

	contactModel "github.com/wso2/identity-contact-resolution-service/internal/contact/model"
	identityModel "github.com/wso2/identity-contact-resolution-service/internal/identity/model"
	identityService "github.com/wso2/identity-contact-resolution-service/internal/identity/service"
)

func benchEmail(tag string, n int) *string {
	email := fmt.Sprintf("%s-%d-%d@example.com", tag, time.Now().UnixNano(), n)
	return &email
}

func benchPhone(n int) *string {
	phone := fmt.Sprintf("+2%d%d", time.Now().UnixNano(), n)
	return &phone
}

// BenchmarkIngest_NewIdentity measures ingestion of contacts that never
// match anything.
func BenchmarkIngest_NewIdentity(b *testing.B) {

	svc := identityService.GetIdentityService()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := svc.Ingest(contactModel.ContactRequest{
			Email:       benchEmail("ingest", i),
			PhoneNumber: benchPhone(i),
		})
		if err != nil {
			b.Fatalf("ingest failed: %v", err)
		}
	}
}

// BenchmarkResolve_ExistingIdentity measures the query path against one
// identity that keeps growing by a shared phone number.
func BenchmarkResolve_ExistingIdentity(b *testing.B) {

	svc := identityService.GetIdentityService()
	phone := benchPhone(0)
	for i := 0; i < 10; i++ {
		if _, err := svc.Ingest(contactModel.ContactRequest{
			Email:       benchEmail("grow", i),
			PhoneNumber: phone,
		}); err != nil {
			b.Fatalf("setup ingest failed: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := svc.Resolve(identityModel.ResolveRequest{PhoneNumber: phone})
		if err != nil {
			b.Fatalf("resolve failed: %v", err)
		}
	}
}

// BenchmarkIngest_LinkingPair measures ingestion when every second contact
// links to the previous one through a shared email.
func BenchmarkIngest_LinkingPair(b *testing.B) {

	svc := identityService.GetIdentityService()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		email := benchEmail("pair", i)
		if _, err := svc.Ingest(contactModel.ContactRequest{
			Email:       email,
			PhoneNumber: benchPhone(2 * i),
		}); err != nil {
			b.Fatalf("ingest failed: %v", err)
		}
		if _, err := svc.Ingest(contactModel.ContactRequest{
			Email:       email,
			PhoneNumber: benchPhone(2*i + 1),
		}); err != nil {
			b.Fatalf("linking ingest failed: %v", err)
		}
	}
}
