// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndTextfile(t *testing.T) {
	r := prometheus.NewRegistry()
	Register(r)
	Register(r)
	assert.Equal(t, prometheus.Registerer(r), GetRegisterer())

	before := testutil.ToFloat64(CodecOps.WithLabelValues("collate", EncodeOp, SuccessLabel))
	CodecOps.WithLabelValues("collate", EncodeOp, SuccessLabel).Inc()
	EncodedKeyBytes.Observe(12)
	assert.Equal(t, before+1, testutil.ToFloat64(CodecOps.WithLabelValues("collate", EncodeOp, SuccessLabel)))

	path := filepath.Join(t.TempDir(), "collate.prom")
	require.NoError(t, WriteTextfile(path, r))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "collate_codec_ops_total")
	assert.Contains(t, string(data), "collate_codec_encoded_key_bytes_bucket")
}
