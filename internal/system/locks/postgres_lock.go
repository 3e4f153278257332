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

package locks

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/wso2/identity-contact-resolution-service/internal/system/database/client"
	"github.com/wso2/identity-contact-resolution-service/internal/system/database/provider"
	"github.com/wso2/identity-contact-resolution-service/internal/system/errors"
	"github.com/wso2/identity-contact-resolution-service/internal/system/log"
)

// PostgresLock implements DistributedLock using PostgreSQL advisory locks.
// Advisory locks are session scoped, so the client that acquired a lock is
// held open until the matching Release.
type PostgresLock struct {
	mu   sync.Mutex
	held map[string]client.DBClientInterface
}

func NewPostgresLock() *PostgresLock {
	return &PostgresLock{
		held: make(map[string]client.DBClientInterface),
	}
}

// PostgreSQL advisory locks key on a bigint; string keys are hashed down.
func (l *PostgresLock) generateLockKey(key string) (int64, error) {

	logger := log.GetLogger()
	h := fnv.New64a()
	_, err := h.Write([]byte(key))
	if err != nil {
		errorMsg := fmt.Sprintf("failed to hash lock key '%s'", key)
		logger.Debug(errorMsg, log.Error(err))
		serverError := errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_KEY_GEN.Code,
			Message:     errors.LOCK_KEY_GEN.Message,
			Description: errorMsg,
		}, err)
		return 0, serverError
	}
	return int64(h.Sum64()), nil
}

// Acquire attempts to take the advisory lock without blocking. The ttl is
// ignored: Postgres releases the lock when the holding session dies.
func (l *PostgresLock) Acquire(key string, _ time.Duration) (bool, error) {

	logger := log.GetLogger()
	dbClient, err := provider.NewDBProvider().GetSessionDBClient()
	if err != nil {
		errorMsg := "Failed during DB client creation for advisory lock acquiring."
		logger.Error(errorMsg, log.Error(err))
		serverError := errors.NewServerError(errors.ErrorMessage{
			Code:        errors.DB_CLIENT_INIT.Code,
			Message:     errors.DB_CLIENT_INIT.Message,
			Description: errorMsg,
		}, err)
		return false, serverError
	}

	lockID, err := l.generateLockKey(key)
	if err != nil {
		_ = dbClient.Close()
		return false, err
	}

	results, err := dbClient.ExecuteQuery("SELECT pg_try_advisory_lock($1)", lockID)
	if err != nil {
		_ = dbClient.Close()
		errorMsg := "Failed to execute pg_try_advisory_lock"
		logger.Error(errorMsg, log.Error(err))
		return false, errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_ACQUIRE.Code,
			Message:     errors.LOCK_ACQUIRE.Message,
			Description: errorMsg,
		}, err)
	}

	if len(results) == 0 || results[0]["pg_try_advisory_lock"] == nil {
		_ = dbClient.Close()
		errorMsg := fmt.Sprintf("pg_try_advisory_lock returned no results or invalid field for lock id %d", lockID)
		logger.Error(errorMsg)
		return false, errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_RESULT_INVALID.Code,
			Message:     errors.LOCK_RESULT_INVALID.Message,
			Description: errorMsg,
		}, nil)
	}

	acquired := results[0]["pg_try_advisory_lock"].(bool)
	if !acquired {
		_ = dbClient.Close()
		return false, nil
	}

	l.mu.Lock()
	l.held[key] = dbClient
	l.mu.Unlock()
	return true, nil
}

// Release unlocks the key on the session that acquired it.
func (l *PostgresLock) Release(key string) error {

	logger := log.GetLogger()

	l.mu.Lock()
	dbClient, ok := l.held[key]
	delete(l.held, key)
	l.mu.Unlock()

	if !ok {
		errorMsg := fmt.Sprintf("no held advisory lock for key '%s'", key)
		logger.Error(errorMsg)
		return errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_RELEASE.Code,
			Message:     errors.LOCK_RELEASE.Message,
			Description: errorMsg,
		}, nil)
	}
	defer dbClient.Close()

	lockID, err := l.generateLockKey(key)
	if err != nil {
		return err
	}

	results, err := dbClient.ExecuteQuery("SELECT pg_advisory_unlock($1)", lockID)
	if err != nil || len(results) == 0 || results[0]["pg_advisory_unlock"] != true {
		errorMsg := "pg_advisory_unlock failed"
		logger.Error(errorMsg, log.Error(err))
		return errors.NewServerError(errors.ErrorMessage{
			Code:        errors.LOCK_RELEASE.Code,
			Message:     errors.LOCK_RELEASE.Message,
			Description: errorMsg,
		}, err)
	}
	logger.Debug(fmt.Sprintf("Advisory lock released for key: %s", key))
	return nil
}
