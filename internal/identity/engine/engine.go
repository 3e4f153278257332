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

package engine

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wso2/identity-contact-resolution-service/internal/identity/store"
	"github.com/wso2/identity-contact-resolution-service/internal/system/constants"
	errors2 "github.com/wso2/identity-contact-resolution-service/internal/system/errors"
	"github.com/wso2/identity-contact-resolution-service/internal/system/log"
	"github.com/wso2/identity-contact-resolution-service/internal/system/metrics"
)

// UnionFindEngineInterface maintains the partition of contact ids into
// identity groups. Every ingested contact belongs to exactly one group, and
// the group root is always its minimal member id.
type UnionFindEngineInterface interface {
	FindRoot(contactId int64) (int64, error)
	Union(contactIdA, contactIdB int64) (int64, error)
	UnionAll(contactIds []int64) (int64, error)
}

// UnionFindEngine is the default implementation of UnionFindEngineInterface.
type UnionFindEngine struct{}

// GetUnionFindEngine returns the union-find engine.
func GetUnionFindEngine() UnionFindEngineInterface {

	return &UnionFindEngine{}
}

// FindRoot returns the root of the group containing the given contact.
func (e *UnionFindEngine) FindRoot(contactId int64) (int64, error) {

	rootId, found, err := store.FindRootOf(contactId)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, errors2.NewClientError(errors2.CONTACT_NOT_FOUND, http.StatusNotFound)
	}
	return rootId, nil
}

// Union merges the groups containing the two contacts and returns the root
// of the merged group. Merging the same group is a no-op. Lost concurrency
// races are retried a bounded number of times with fresh root lookups; a
// request that loses every attempt is reported as temporarily unavailable
// rather than left half-applied.
func (e *UnionFindEngine) Union(contactIdA, contactIdB int64) (int64, error) {

	logger := log.GetLogger()

	for attempt := 0; attempt < constants.MaxRetryAttempts; attempt++ {
		rootA, err := e.findRootForUnion(contactIdA)
		if err != nil {
			return 0, err
		}
		rootB, err := e.findRootForUnion(contactIdB)
		if err != nil {
			return 0, err
		}

		if rootA == rootB {
			return rootA, nil
		}

		// The smaller root survives, which keeps the root the minimal
		// member across any merge order.
		survivingRoot, losingRoot := rootA, rootB
		if losingRoot < survivingRoot {
			survivingRoot, losingRoot = losingRoot, survivingRoot
		}

		err = store.MergeInto(survivingRoot, losingRoot)
		if err == nil {
			metrics.Get().GroupUnions.Inc()
			return survivingRoot, nil
		}
		if errors.Is(err, store.ErrMergeConflict) {
			metrics.Get().MergeConflicts.Inc()
			logger.Debug("Merge lost a concurrency race, retrying",
				log.Int64("survivingRoot", survivingRoot), log.Int64("losingRoot", losingRoot),
				log.Int("attempt", attempt+1))
			time.Sleep(constants.RetryDelayMillis * time.Millisecond)
			continue
		}
		return 0, err
	}

	logger.Warn("Union gave up after repeated merge conflicts",
		log.Int64("contactIdA", contactIdA), log.Int64("contactIdB", contactIdB))
	return 0, errors2.NewClientError(errors2.RESOLUTION_UNAVAILABLE, http.StatusServiceUnavailable)
}

// UnionAll left-folds Union over the given contacts and returns the root of
// the single resulting group.
func (e *UnionFindEngine) UnionAll(contactIds []int64) (int64, error) {

	if len(contactIds) == 0 {
		return 0, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.INVALID_GROUP_STATE.Code,
			Message:     errors2.INVALID_GROUP_STATE.Message,
			Description: "UnionAll called with no contacts",
		}, nil)
	}

	rootId, err := e.findRootForUnion(contactIds[0])
	if err != nil {
		return 0, err
	}
	for _, contactId := range contactIds[1:] {
		rootId, err = e.Union(rootId, contactId)
		if err != nil {
			return 0, err
		}
	}
	return rootId, nil
}

// findRootForUnion treats a missing group as an internal defect: both sides
// of a union are ids of already ingested contacts, so each must belong to a
// group.
func (e *UnionFindEngine) findRootForUnion(contactId int64) (int64, error) {

	rootId, found, err := store.FindRootOf(contactId)
	if err != nil {
		return 0, err
	}
	if !found {
		errorMsg := fmt.Sprintf("Contact %d belongs to no identity group", contactId)
		log.GetLogger().Error(errorMsg)
		return 0, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.INVALID_GROUP_STATE.Code,
			Message:     errors2.INVALID_GROUP_STATE.Message,
			Description: errorMsg,
		}, nil)
	}
	return rootId, nil
}
