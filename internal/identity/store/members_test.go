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

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeMembers_SortedUnion(t *testing.T) {
	merged := MergeMembers([]int64{9, 5}, []int64{2})
	assert.Equal(t, []int64{2, 5, 9}, merged)
}

func TestMergeMembers_DropsDuplicates(t *testing.T) {
	merged := MergeMembers([]int64{1, 3, 5}, []int64{3, 5, 7})
	assert.Equal(t, []int64{1, 3, 5, 7}, merged)
}

func TestMergeMembers_MinimalIdFirst(t *testing.T) {
	merged := MergeMembers([]int64{42}, []int64{7, 100})
	assert.Equal(t, int64(7), merged[0])
}

func TestMergeMembers_EmptySides(t *testing.T) {
	assert.Equal(t, []int64{4}, MergeMembers(nil, []int64{4}))
	assert.Equal(t, []int64{4}, MergeMembers([]int64{4}, nil))
	assert.Empty(t, MergeMembers(nil, nil))
}
