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

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters exposed on /metrics.
type Metrics struct {
	ContactsCreated prometheus.Counter
	Resolutions     prometheus.Counter
	GroupUnions     prometheus.Counter
	MergeConflicts  prometheus.Counter
}

var (
	instance *Metrics
	once     sync.Once
)

// Get creates and registers all counters on first use.
func Get() *Metrics {

	once.Do(func() {
		instance = &Metrics{
			ContactsCreated: promauto.NewCounter(prometheus.CounterOpts{
				Name: "icr_contacts_created_total",
				Help: "Total number of contact records created.",
			}),
			Resolutions: promauto.NewCounter(prometheus.CounterOpts{
				Name: "icr_resolutions_total",
				Help: "Total number of identity resolution requests served.",
			}),
			GroupUnions: promauto.NewCounter(prometheus.CounterOpts{
				Name: "icr_group_unions_total",
				Help: "Total number of identity group merges performed.",
			}),
			MergeConflicts: promauto.NewCounter(prometheus.CounterOpts{
				Name: "icr_merge_conflicts_total",
				Help: "Total number of optimistic merge conflicts that triggered a retry.",
			}),
		}
	})
	return instance
}
