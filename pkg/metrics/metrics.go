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
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// collateNamespace 是当前项目所有 Prometheus 指标使用的命名空间。
	collateNamespace = "collate"

	codecSubsystem   = "codec"
	keysetSubsystem  = "keyset"
	keyfileSubsystem = "keyfile"

	// 以下为当前使用的通用标签名。
	formatLabelName = "format"
	opLabelName     = "op"
	statusLabelName = "status"
)

const (
	SuccessLabel = "success"
	FailLabel    = "fail"

	MarshalOp   = "marshal"
	UnmarshalOp = "unmarshal"
	EncodeOp    = "encode"
	DecodeOp    = "decode"
)

var (
	// buckets 为耗时直方图的桶划分，单位为毫秒。
	// [1 2 4 8 16 32 64 128 256 512 1024 2048 4096 8192 16384 32768 65536 1.31072e+05]
	buckets = prometheus.ExponentialBuckets(1, 2, 18)

	// sizeBuckets 为编码长度的桶划分，单位为字节。
	sizeBuckets = prometheus.ExponentialBuckets(4, 4, 10)

	CodecOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: collateNamespace,
			Subsystem: codecSubsystem,
			Name:      "ops_total",
			Help:      "count of serializer operations",
		}, []string{formatLabelName, opLabelName, statusLabelName})

	EncodedKeyBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: collateNamespace,
			Subsystem: codecSubsystem,
			Name:      "encoded_key_bytes",
			Help:      "size of encoded collation keys",
			Buckets:   sizeBuckets,
		})

	KeysetBuildLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: collateNamespace,
			Subsystem: keysetSubsystem,
			Name:      "build_latency",
			Help:      "latency of building a sorted key set, in milliseconds",
			Buckets:   buckets,
		})

	KeysetBuildValues = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: collateNamespace,
			Subsystem: keysetSubsystem,
			Name:      "values_total",
			Help:      "count of values passed to key set builds",
		}, []string{statusLabelName})

	KeyfileFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: collateNamespace,
			Subsystem: keyfileSubsystem,
			Name:      "frames_total",
			Help:      "count of keyfile frames written or read",
		}, []string{opLabelName})

	metricRegisterer prometheus.Registerer
	registerOnce     sync.Once
)

// GetRegisterer 返回全局 Prometheus Registerer。
// 如果尚未通过 Register 显式设置，则返回 prometheus.DefaultRegisterer。
func GetRegisterer() prometheus.Registerer {
	if metricRegisterer == nil {
		return prometheus.DefaultRegisterer
	}
	return metricRegisterer
}

// Register 注册当前定义的所有指标，重复调用只生效一次。
func Register(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(CodecOps)
		r.MustRegister(EncodedKeyBytes)
		r.MustRegister(KeysetBuildLatency)
		r.MustRegister(KeysetBuildValues)
		r.MustRegister(KeyfileFrames)
		metricRegisterer = r
	})
}

// WriteTextfile 将 g 中的指标以 textfile collector 格式写入 path。
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
