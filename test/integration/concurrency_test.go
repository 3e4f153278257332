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

package integration

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	contactModel "github.com/wso2/identity-contact-resolution-service/internal/contact/model"
	contactStore "github.com/wso2/identity-contact-resolution-service/internal/contact/store"
	identityEngine "github.com/wso2/identity-contact-resolution-service/internal/identity/engine"
	identityModel "github.com/wso2/identity-contact-resolution-service/internal/identity/model"
	identityService "github.com/wso2/identity-contact-resolution-service/internal/identity/service"
	groupStore "github.com/wso2/identity-contact-resolution-service/internal/identity/store"
)

// Concurrent resolves of identifiers nobody has seen yet must agree on a
// single identity instead of each creating one.
func Test_Concurrent_Resolve_CreatesSingleIdentity(t *testing.T) {

	email := uniqueEmail("race")
	phone := uniquePhone()

	const workers = 8
	primaryIds := make([]int64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			summary, err := identityService.GetIdentityService().Resolve(
				identityModel.ResolveRequest{Email: email, PhoneNumber: phone})
			if err != nil {
				errs[idx] = err
				return
			}
			primaryIds[idx] = summary.PrimaryContactID
		}(i)
	}
	wg.Wait()

	var agreedPrimary int64
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if agreedPrimary == 0 {
			agreedPrimary = primaryIds[i]
		}
		assert.Equal(t, agreedPrimary, primaryIds[i], "all racers must resolve to one identity")
	}

	matches, err := contactStore.FindContactsByEmailOrPhone(email, phone)
	require.NoError(t, err)
	assert.Len(t, matches, 1, "the race must create exactly one contact")
}

// Concurrent unions over overlapping groups must converge to one group
// rooted at the global minimum, with no member lost.
func Test_Concurrent_Unions_ConvergeToOnePartition(t *testing.T) {

	const identities = 6
	ids := make([]int64, identities)
	for i := range ids {
		summary := resolve(t, identityModel.ResolveRequest{Email: uniqueEmail("cu")})
		ids[i] = summary.PrimaryContactID
	}

	minId := ids[0]
	for _, id := range ids {
		if id < minId {
			minId = id
		}
	}

	engine := identityEngine.GetUnionFindEngine()

	// Overlapping pairs from both directions: (0,1) (1,2) ... and the
	// reverses, all in flight at once.
	var wg sync.WaitGroup
	errs := make([]error, 0, 2*(identities-1))
	var mu sync.Mutex
	for i := 0; i < identities-1; i++ {
		for _, pair := range [][2]int64{{ids[i], ids[i+1]}, {ids[i+1], ids[i]}} {
			wg.Add(1)
			go func(a, b int64) {
				defer wg.Done()
				_, err := engine.Union(a, b)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}(pair[0], pair[1])
		}
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	for _, id := range ids {
		rootId, err := engine.FindRoot(id)
		require.NoError(t, err)
		assert.Equal(t, minId, rootId)
	}

	group, err := groupStore.GetGroup(minId)
	require.NoError(t, err)
	require.NotNil(t, group)
	assert.ElementsMatch(t, ids, group.Members)
}

// A resolve whose freshly unioned root is absorbed by a concurrent merge
// must follow the surviving root instead of failing.
func Test_Concurrent_Resolve_SurvivesRootAbsorption(t *testing.T) {

	const anchors = 5
	anchorPhones := make([]*string, anchors)
	anchorPrimaries := make([]int64, anchors)
	for i := 0; i < anchors; i++ {
		phone := uniquePhone()
		summary := resolve(t, identityModel.ResolveRequest{
			Email: uniqueEmail("anchor"), PhoneNumber: phone})
		anchorPhones[i] = phone
		anchorPrimaries[i] = summary.PrimaryContactID
	}

	email := uniqueEmail("absorb")
	resolve(t, identityModel.ResolveRequest{Email: email})

	var (
		mu         sync.Mutex
		readerErrs []error
	)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			if _, err := identityService.GetIdentityService().Resolve(
				identityModel.ResolveRequest{Email: email}); err != nil {
				mu.Lock()
				readerErrs = append(readerErrs, err)
				mu.Unlock()
			}
		}
	}()

	// Each bridge absorbs the identity's current root into the next smaller
	// anchor root, deleting the row a concurrent resolve may be about to
	// read.
	for i := anchors - 1; i >= 0; i-- {
		_, err := identityService.GetIdentityService().Ingest(contactModel.ContactRequest{
			Email:       email,
			PhoneNumber: anchorPhones[i],
		})
		require.NoError(t, err)
	}
	close(done)
	wg.Wait()

	mu.Lock()
	for _, err := range readerErrs {
		assert.NoError(t, err)
	}
	mu.Unlock()

	final := resolve(t, identityModel.ResolveRequest{Email: email})
	assert.Equal(t, anchorPrimaries[0], final.PrimaryContactID)
}
