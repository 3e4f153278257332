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
	"sync"
	"time"

	"github.com/wso2/identity-contact-resolution-service/internal/system/config"
	"github.com/wso2/identity-contact-resolution-service/internal/system/constants"
	dbmongo "github.com/wso2/identity-contact-resolution-service/internal/system/database/mongo"
)

// DistributedLock serializes work on a shared key across all server
// processes. Acquire is non-blocking: callers retry with backoff.
type DistributedLock interface {
	Acquire(key string, ttl time.Duration) (bool, error)
	Release(key string) error
}

var (
	distributedLock DistributedLock
	once            sync.Once
)

// GetDistributedLock returns the lock implementation selected by the
// locks.provider configuration. Postgres advisory locks are the default.
func GetDistributedLock() DistributedLock {

	once.Do(func() {
		lockConfig := config.GetICRRuntime().Config.Locks
		switch lockConfig.Provider {
		case constants.LockProviderMongo:
			distributedLock = NewMongoLock(dbmongo.GetMongoDBInstance().Database)
		default:
			distributedLock = NewPostgresLock()
		}
	})
	return distributedLock
}
