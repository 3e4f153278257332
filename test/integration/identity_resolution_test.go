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
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	contactModel "github.com/wso2/identity-contact-resolution-service/internal/contact/model"
	contactStore "github.com/wso2/identity-contact-resolution-service/internal/contact/store"
	identityEngine "github.com/wso2/identity-contact-resolution-service/internal/identity/engine"
	identityModel "github.com/wso2/identity-contact-resolution-service/internal/identity/model"
	identityService "github.com/wso2/identity-contact-resolution-service/internal/identity/service"
	groupStore "github.com/wso2/identity-contact-resolution-service/internal/identity/store"
	dbprovider "github.com/wso2/identity-contact-resolution-service/internal/system/database/provider"
	"github.com/wso2/identity-contact-resolution-service/internal/system/errors"
)

func uniqueEmail(tag string) *string {
	email := fmt.Sprintf("%s-%d@example.com", tag, time.Now().UnixNano())
	return &email
}

func uniquePhone() *string {
	phone := fmt.Sprintf("+1%d", time.Now().UnixNano())
	return &phone
}

func ingest(t *testing.T, request contactModel.ContactRequest) *contactModel.Contact {
	t.Helper()
	contact, err := identityService.GetIdentityService().Ingest(request)
	require.NoError(t, err)
	require.NotNil(t, contact)
	return contact
}

func resolve(t *testing.T, request identityModel.ResolveRequest) *identityModel.IdentitySummary {
	t.Helper()
	summary, err := identityService.GetIdentityService().Resolve(request)
	require.NoError(t, err)
	require.NotNil(t, summary)
	return summary
}

func Test_Resolve_NewIdentity_CreatesPrimary(t *testing.T) {

	email := uniqueEmail("fresh")
	phone := uniquePhone()

	summary := resolve(t, identityModel.ResolveRequest{Email: email, PhoneNumber: phone})

	assert.Greater(t, summary.PrimaryContactID, int64(0))
	assert.Equal(t, []string{*email}, summary.Emails)
	assert.Equal(t, []string{*phone}, summary.PhoneNumbers)
	assert.Empty(t, summary.SecondaryContactIDs)

	// Resolving the same identifiers again returns the same identity
	// without creating anything new.
	again := resolve(t, identityModel.ResolveRequest{Email: email, PhoneNumber: phone})
	assert.Equal(t, summary.PrimaryContactID, again.PrimaryContactID)
	assert.Equal(t, summary.Emails, again.Emails)
	assert.Equal(t, summary.PhoneNumbers, again.PhoneNumbers)
	assert.Empty(t, again.SecondaryContactIDs)
}

func Test_Ingest_TransitiveLinking(t *testing.T) {

	email1, email3 := uniqueEmail("t1"), uniqueEmail("t3")
	phone1, phone2 := uniquePhone(), uniquePhone()

	// c1 and c3 share nothing directly; both share something with c2.
	c1 := ingest(t, contactModel.ContactRequest{Email: email1, PhoneNumber: phone1})
	c2 := ingest(t, contactModel.ContactRequest{Email: email1, PhoneNumber: phone2})
	c3 := ingest(t, contactModel.ContactRequest{Email: email3, PhoneNumber: phone2})

	summary := resolve(t, identityModel.ResolveRequest{Email: email3})

	assert.Equal(t, c1.ContactID, summary.PrimaryContactID)
	assert.Equal(t, []int64{c2.ContactID, c3.ContactID}, summary.SecondaryContactIDs)
	assert.Equal(t, []string{*email1, *email3}, summary.Emails)
	assert.Equal(t, []string{*phone1, *phone2}, summary.PhoneNumbers)
}

func Test_Ingest_BridgesTwoExistingIdentities(t *testing.T) {

	emailA, emailB := uniqueEmail("ma"), uniqueEmail("mb")
	phoneA, phoneB := uniquePhone(), uniquePhone()

	summaryA := resolve(t, identityModel.ResolveRequest{Email: emailA, PhoneNumber: phoneA})
	summaryB := resolve(t, identityModel.ResolveRequest{Email: emailB, PhoneNumber: phoneB})
	require.NotEqual(t, summaryA.PrimaryContactID, summaryB.PrimaryContactID)

	bridge := ingest(t, contactModel.ContactRequest{Email: emailA, PhoneNumber: phoneB})

	merged := resolve(t, identityModel.ResolveRequest{Email: emailB})
	assert.Equal(t, summaryA.PrimaryContactID, merged.PrimaryContactID)
	assert.Contains(t, merged.SecondaryContactIDs, summaryB.PrimaryContactID)
	assert.Contains(t, merged.SecondaryContactIDs, bridge.ContactID)
	assert.ElementsMatch(t, []string{*emailA, *emailB}, merged.Emails)
	assert.ElementsMatch(t, []string{*phoneA, *phoneB}, merged.PhoneNumbers)
}

func Test_Resolve_SharedPhoneAggregatesEmails(t *testing.T) {

	email1, email2 := uniqueEmail("p1"), uniqueEmail("p2")
	phone := uniquePhone()

	c1 := ingest(t, contactModel.ContactRequest{Email: email1, PhoneNumber: phone})
	c2 := ingest(t, contactModel.ContactRequest{Email: email2, PhoneNumber: phone})

	summary := resolve(t, identityModel.ResolveRequest{PhoneNumber: phone})

	assert.Equal(t, c1.ContactID, summary.PrimaryContactID)
	assert.Equal(t, []string{*email1, *email2}, summary.Emails)
	assert.Equal(t, []string{*phone}, summary.PhoneNumbers)
	assert.Equal(t, []int64{c2.ContactID}, summary.SecondaryContactIDs)
}

func Test_Ingest_SecondaryLinksThroughLinkedId(t *testing.T) {

	email := uniqueEmail("sec")
	phone := uniquePhone()

	primary := ingest(t, contactModel.ContactRequest{Email: email})
	secondary := ingest(t, contactModel.ContactRequest{
		PhoneNumber:    phone,
		LinkedID:       &primary.ContactID,
		LinkPrecedence: "secondary",
	})

	summary := resolve(t, identityModel.ResolveRequest{PhoneNumber: phone})
	assert.Equal(t, primary.ContactID, summary.PrimaryContactID)
	assert.Equal(t, []int64{secondary.ContactID}, summary.SecondaryContactIDs)
	assert.Equal(t, []string{*email}, summary.Emails)
}

func Test_Ingest_MissingLinkedContact_Rejected(t *testing.T) {

	missingId := int64(1 << 60)
	_, err := identityService.GetIdentityService().Ingest(contactModel.ContactRequest{
		Email:          uniqueEmail("dangling"),
		LinkPrecedence: "secondary",
		LinkedID:       &missingId,
	})
	require.Error(t, err)

	clientErr, ok := err.(*errors.ClientError)
	require.True(t, ok, "expected a ClientError")
	assert.Equal(t, http.StatusBadRequest, clientErr.StatusCode)
	assert.Equal(t, errors.LINKED_CONTACT_NOT_FOUND.Code, clientErr.Code)
}

func Test_Engine_UnionAll_ConvergesToMinimalRoot(t *testing.T) {

	a := resolve(t, identityModel.ResolveRequest{Email: uniqueEmail("ua")})
	b := resolve(t, identityModel.ResolveRequest{Email: uniqueEmail("ub")})
	c := resolve(t, identityModel.ResolveRequest{Email: uniqueEmail("uc")})

	ids := []int64{c.PrimaryContactID, a.PrimaryContactID, b.PrimaryContactID}
	minId := a.PrimaryContactID
	for _, id := range ids {
		if id < minId {
			minId = id
		}
	}

	engine := identityEngine.GetUnionFindEngine()
	rootId, err := engine.UnionAll(ids)
	require.NoError(t, err)
	assert.Equal(t, minId, rootId)

	// Every member now resolves to the same root, and the surviving row
	// holds all members sorted with the root first.
	for _, id := range ids {
		foundRoot, err := engine.FindRoot(id)
		require.NoError(t, err)
		assert.Equal(t, rootId, foundRoot)
	}

	group, err := groupStore.GetGroup(rootId)
	require.NoError(t, err)
	require.NotNil(t, group)
	assert.ElementsMatch(t, ids, group.Members)
	assert.Equal(t, rootId, group.Members[0])

	// Unioning again is a no-op.
	sameRoot, err := engine.UnionAll(ids)
	require.NoError(t, err)
	assert.Equal(t, rootId, sameRoot)

	unchanged, err := groupStore.GetGroup(rootId)
	require.NoError(t, err)
	require.NotNil(t, unchanged)
	assert.Equal(t, group.Members, unchanged.Members)
}

func Test_Engine_UnionAll_OrderIndependent(t *testing.T) {

	permutations := [][3]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	engine := identityEngine.GetUnionFindEngine()

	for _, perm := range permutations {
		ids := make([]int64, 3)
		for i := range ids {
			summary := resolve(t, identityModel.ResolveRequest{Email: uniqueEmail("perm")})
			ids[i] = summary.PrimaryContactID
		}
		minId := ids[0]
		for _, id := range ids {
			if id < minId {
				minId = id
			}
		}

		rootId, err := engine.UnionAll([]int64{ids[perm[0]], ids[perm[1]], ids[perm[2]]})
		require.NoError(t, err)
		assert.Equal(t, minId, rootId, "union order %v must not change the root", perm)

		group, err := groupStore.GetGroup(rootId)
		require.NoError(t, err)
		require.NotNil(t, group)
		assert.ElementsMatch(t, ids, group.Members)
		assert.Equal(t, rootId, group.Members[0])
	}
}

// A contact create whose group insert fails must roll back the contact row
// too; a contact outside every group would break the partition for good.
func Test_Ingest_FailedGroupInsert_LeavesNoContactBehind(t *testing.T) {

	dbClient, err := dbprovider.NewDBProvider().GetDBClient()
	require.NoError(t, err)
	defer dbClient.Close()

	results, err := dbClient.ExecuteQuery("SELECT nextval('contacts_contact_id_seq') AS next_id;")
	require.NoError(t, err)
	require.Len(t, results, 1)
	plantedRoot := results[0]["next_id"].(int64) + 1

	// Plant a group row at the id the next insert will be assigned, so the
	// singleton group insert collides on the primary key.
	membersJSON, err := json.Marshal([]int64{plantedRoot})
	require.NoError(t, err)
	_, err = dbClient.ExecuteQuery(
		"INSERT INTO identity_groups (root_id, members, row_version) VALUES ($1, $2, 1);",
		plantedRoot, membersJSON)
	require.NoError(t, err)
	defer func() {
		_, _ = dbClient.ExecuteQuery("DELETE FROM identity_groups WHERE root_id = $1;", plantedRoot)
	}()

	email := uniqueEmail("atomic")
	_, err = identityService.GetIdentityService().Ingest(contactModel.ContactRequest{Email: email})
	require.Error(t, err)

	orphans, err := contactStore.FindContactsByEmailOrPhone(email, nil)
	require.NoError(t, err)
	assert.Empty(t, orphans, "the contact insert must roll back with the group insert")

	// The sequence has moved past the collision; the same request now
	// succeeds and creates both rows.
	contact := ingest(t, contactModel.ContactRequest{Email: email})
	rootId, err := identityEngine.GetUnionFindEngine().FindRoot(contact.ContactID)
	require.NoError(t, err)
	assert.Equal(t, contact.ContactID, rootId)
}

func Test_Engine_FindRoot_UnknownContact(t *testing.T) {

	_, err := identityEngine.GetUnionFindEngine().FindRoot(1 << 61)
	require.Error(t, err)

	clientErr, ok := err.(*errors.ClientError)
	require.True(t, ok, "expected a ClientError")
	assert.Equal(t, http.StatusNotFound, clientErr.StatusCode)
}

func Test_Engine_LosingGroupRowDeleted(t *testing.T) {

	a := resolve(t, identityModel.ResolveRequest{Email: uniqueEmail("da")})
	b := resolve(t, identityModel.ResolveRequest{Email: uniqueEmail("db")})

	engine := identityEngine.GetUnionFindEngine()
	rootId, err := engine.Union(a.PrimaryContactID, b.PrimaryContactID)
	require.NoError(t, err)

	losingRoot := a.PrimaryContactID
	if losingRoot == rootId {
		losingRoot = b.PrimaryContactID
	}

	gone, err := groupStore.GetGroup(losingRoot)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
