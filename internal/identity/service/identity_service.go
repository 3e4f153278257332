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
	"fmt"
	"net/http"
	"time"

	contactModel "github.com/wso2/identity-contact-resolution-service/internal/contact/model"
	contactStore "github.com/wso2/identity-contact-resolution-service/internal/contact/store"
	"github.com/wso2/identity-contact-resolution-service/internal/identity/engine"
	"github.com/wso2/identity-contact-resolution-service/internal/identity/model"
	"github.com/wso2/identity-contact-resolution-service/internal/identity/store"
	"github.com/wso2/identity-contact-resolution-service/internal/system/config"
	"github.com/wso2/identity-contact-resolution-service/internal/system/constants"
	errors2 "github.com/wso2/identity-contact-resolution-service/internal/system/errors"
	"github.com/wso2/identity-contact-resolution-service/internal/system/locks"
	"github.com/wso2/identity-contact-resolution-service/internal/system/log"
	"github.com/wso2/identity-contact-resolution-service/internal/system/metrics"
)

const defaultLockTTLSeconds = 5

// IdentityServiceInterface ingests contact records and resolves identifiers
// to consolidated identities.
type IdentityServiceInterface interface {
	Ingest(request contactModel.ContactRequest) (*contactModel.Contact, error)
	Resolve(request model.ResolveRequest) (*model.IdentitySummary, error)
}

// IdentityService is the default implementation of IdentityServiceInterface.
type IdentityService struct{}

var identityServiceInstance = &IdentityService{}

// GetIdentityService returns the identity service.
func GetIdentityService() IdentityServiceInterface {

	return identityServiceInstance
}

// Ingest stores a new contact record, registers it as a singleton identity
// group and unions that group with the group of every existing contact
// sharing its email or phone number. The contact id is server-assigned.
func (s *IdentityService) Ingest(request contactModel.ContactRequest) (*contactModel.Contact, error) {

	logger := log.GetLogger()

	if err := validateIngestRequest(request); err != nil {
		return nil, err
	}

	// Match before inserting, so the new record never matches itself.
	matches, err := contactStore.FindContactsByEmailOrPhone(request.Email, request.PhoneNumber)
	if err != nil {
		return nil, err
	}

	precedence := request.LinkPrecedence
	if precedence == "" {
		precedence = constants.PrecedencePrimary
	}

	contactId, err := store.CreateContactWithGroup(contactModel.Contact{
		Email:          request.Email,
		PhoneNumber:    request.PhoneNumber,
		LinkedID:       request.LinkedID,
		LinkPrecedence: precedence,
	})
	if err != nil {
		return nil, err
	}
	metrics.Get().ContactsCreated.Inc()

	linkTargets := []int64{contactId}
	for _, match := range matches {
		linkTargets = append(linkTargets, match.ContactID)
	}
	if request.LinkedID != nil {
		linkTargets = append(linkTargets, *request.LinkedID)
	}
	if len(linkTargets) > 1 {
		if _, err := engine.GetUnionFindEngine().UnionAll(linkTargets); err != nil {
			return nil, err
		}
	}

	contact, err := contactStore.GetContact(contactId)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		errorMsg := fmt.Sprintf("Contact %d vanished right after insert", contactId)
		logger.Error(errorMsg)
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.GET_CONTACT.Code,
			Message:     errors2.GET_CONTACT.Message,
			Description: errorMsg,
		}, nil)
	}

	logger.Info("Contact ingested", log.Int64("contactId", contactId),
		log.Int("linkedGroups", len(matches)))
	return contact, nil
}

// Resolve returns the consolidated identity for the given identifiers,
// creating a new contact when nothing matches. Matching contacts whose
// groups are still disjoint are unioned first, so the summary always
// reflects a single group.
func (s *IdentityService) Resolve(request model.ResolveRequest) (*model.IdentitySummary, error) {

	if request.Email == nil && request.PhoneNumber == nil {
		return nil, errors2.NewClientError(errors2.MISSING_IDENTIFIERS, http.StatusBadRequest)
	}

	matches, err := contactStore.FindContactsByEmailOrPhone(request.Email, request.PhoneNumber)
	if err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		summary, created, err := s.resolveAsNewIdentity(request)
		if err != nil {
			return nil, err
		}
		if created {
			metrics.Get().Resolutions.Inc()
			return summary, nil
		}
		// Someone created a matching contact while we waited for the
		// lock. Resolve against the now-existing identity.
		matches, err = contactStore.FindContactsByEmailOrPhone(request.Email, request.PhoneNumber)
		if err != nil {
			return nil, err
		}
	}

	contactIds := make([]int64, 0, len(matches))
	for _, match := range matches {
		contactIds = append(contactIds, match.ContactID)
	}

	rootId, err := engine.GetUnionFindEngine().UnionAll(contactIds)
	if err != nil {
		return nil, err
	}

	summary, err := s.summarizeGroup(rootId)
	if err != nil {
		return nil, err
	}
	metrics.Get().Resolutions.Inc()
	return summary, nil
}

// resolveAsNewIdentity creates a primary contact for identifiers nothing
// matches. The distributed lock keyed on the identifiers closes the race
// where two concurrent requests would otherwise both create a contact.
// Returns created=false when a matching contact appeared while waiting for
// the lock.
func (s *IdentityService) resolveAsNewIdentity(request model.ResolveRequest) (*model.IdentitySummary, bool, error) {

	logger := log.GetLogger()
	lock := locks.GetDistributedLock()
	lockKey := identityLockKey(request)

	ttlSeconds := config.GetICRRuntime().Config.Locks.TTLSeconds
	if ttlSeconds <= 0 {
		ttlSeconds = defaultLockTTLSeconds
	}
	ttl := time.Duration(ttlSeconds) * time.Second

	acquired := false
	for attempt := 0; attempt < constants.MaxRetryAttempts; attempt++ {
		ok, err := lock.Acquire(lockKey, ttl)
		if err != nil {
			errorMsg := "Failed to acquire identity creation lock"
			logger.Debug(errorMsg, log.Error(err))
			return nil, false, errors2.NewServerError(errors2.ErrorMessage{
				Code:        errors2.LOCK_ACQUIRE.Code,
				Message:     errors2.LOCK_ACQUIRE.Message,
				Description: errorMsg,
			}, err)
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(constants.RetryDelayMillis * time.Millisecond)
	}
	if !acquired {
		return nil, false, errors2.NewClientError(errors2.RESOLUTION_UNAVAILABLE, http.StatusServiceUnavailable)
	}
	defer func() {
		if err := lock.Release(lockKey); err != nil {
			logger.Warn("Failed to release identity creation lock",
				log.String("lockKey", lockKey), log.Error(err))
		}
	}()

	// Re-check under the lock; the loser of the race must link instead of
	// creating a duplicate identity.
	matches, err := contactStore.FindContactsByEmailOrPhone(request.Email, request.PhoneNumber)
	if err != nil {
		return nil, false, err
	}
	if len(matches) > 0 {
		return nil, false, nil
	}

	contactId, err := store.CreateContactWithGroup(contactModel.Contact{
		Email:          request.Email,
		PhoneNumber:    request.PhoneNumber,
		LinkPrecedence: constants.PrecedencePrimary,
	})
	if err != nil {
		return nil, false, err
	}
	metrics.Get().ContactsCreated.Inc()

	logger.Info("New identity created", log.Int64("contactId", contactId))
	summary, err := s.summarizeGroup(contactId)
	if err != nil {
		return nil, false, err
	}
	return summary, true, nil
}

// summarizeGroup loads the group rooted at rootId and aggregates its
// contacts. A concurrent union may absorb the group between the caller's
// root lookup and the read here; in that case the new root is found through
// the member index and the read retried. A root that is not the minimal
// member, or members without contact rows, mean the partition contract was
// broken; both are logged as defects.
func (s *IdentityService) summarizeGroup(rootId int64) (*model.IdentitySummary, error) {

	logger := log.GetLogger()

	var group *model.IdentityGroup
	for attempt := 0; attempt < constants.MaxRetryAttempts; attempt++ {
		var err error
		group, err = store.GetGroup(rootId)
		if err != nil {
			return nil, err
		}
		if group != nil {
			break
		}
		newRootId, found, err := store.FindRootOf(rootId)
		if err != nil {
			return nil, err
		}
		if !found {
			break
		}
		logger.Debug("Group absorbed by a concurrent union, following new root",
			log.Int64("rootId", rootId), log.Int64("newRootId", newRootId))
		rootId = newRootId
		time.Sleep(constants.RetryDelayMillis * time.Millisecond)
	}
	if group == nil {
		errorMsg := fmt.Sprintf("No identity group rooted at: %d", rootId)
		logger.Error(errorMsg)
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.INVALID_GROUP_STATE.Code,
			Message:     errors2.INVALID_GROUP_STATE.Message,
			Description: errorMsg,
		}, nil)
	}
	if len(group.Members) == 0 || group.Members[0] != rootId {
		errorMsg := fmt.Sprintf("Group rooted at %d does not have its root as minimal member", rootId)
		logger.Error(errorMsg)
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.INVALID_GROUP_STATE.Code,
			Message:     errors2.INVALID_GROUP_STATE.Message,
			Description: errorMsg,
		}, nil)
	}

	contacts, err := contactStore.GetContactsByIds(group.Members)
	if err != nil {
		return nil, err
	}
	if len(contacts) != len(group.Members) {
		errorMsg := fmt.Sprintf("Group rooted at %d references %d contacts but %d exist",
			rootId, len(group.Members), len(contacts))
		logger.Error(errorMsg)
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.INVALID_GROUP_STATE.Code,
			Message:     errors2.INVALID_GROUP_STATE.Message,
			Description: errorMsg,
		}, nil)
	}

	summary := BuildIdentitySummary(rootId, contacts)
	return &summary, nil
}

func validateIngestRequest(request contactModel.ContactRequest) error {

	if request.Email == nil && request.PhoneNumber == nil {
		return errors2.NewClientError(errors2.MISSING_IDENTIFIERS, http.StatusBadRequest)
	}

	precedence := request.LinkPrecedence
	if precedence != "" && !constants.AllowedPrecedenceValues[precedence] {
		return errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.BAD_REQUEST.Code,
			Message:     errors2.BAD_REQUEST.Message,
			Description: fmt.Sprintf("Unsupported linkPrecedence value: %s", precedence),
		}, http.StatusBadRequest)
	}
	if precedence == constants.PrecedenceSecondary && request.LinkedID == nil {
		return errors2.NewClientError(errors2.MISSING_LINKED_ID, http.StatusBadRequest)
	}

	if request.LinkedID != nil {
		linked, err := contactStore.GetContact(*request.LinkedID)
		if err != nil {
			return err
		}
		if linked == nil {
			return errors2.NewClientError(errors2.LINKED_CONTACT_NOT_FOUND, http.StatusBadRequest)
		}
	}
	return nil
}

// identityLockKey derives a stable lock key from the request identifiers.
func identityLockKey(request model.ResolveRequest) string {

	email, phoneNumber := "", ""
	if request.Email != nil {
		email = *request.Email
	}
	if request.PhoneNumber != nil {
		phoneNumber = *request.PhoneNumber
	}
	return fmt.Sprintf("%semail=%s|phone=%s", constants.IdentityLockPrefix, email, phoneNumber)
}
