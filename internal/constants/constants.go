/*
Copyright 2024.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package constants

import "k8s.io/apimachinery/pkg/runtime/schema"

const (
	// Pod annotation written by the HAMi device plugin, compact encoding:
	// "<gpuId>:<units>,<gpuId>:<units>,..."
	PodAllocationAnnotation = "hami.io/vgpu-devices-allocated"

	// Node annotation written by the HAMi device registrar, extended encoding:
	// colon separated entries of ">=4" comma separated fields, field 0 is the
	// GPU id and field 3 the allocated units.
	NodeRegisterAnnotation = "hami.io/node-nvidia-register"

	// Tenant identity annotations stamped on pods and workloads at submission.
	UserAnnotation = "example.com/member"
	TeamAnnotation = "example.com/team"

	// Optional node label overriding the family derived from the node name.
	GPUProductLabel = "nvidia.com/gpu.product"

	QueueNameLabel          = "kueue.x-k8s.io/queue-name"
	PodGroupNameLabel       = "kueue.x-k8s.io/pod-group-name"
	PodGroupTotalAnnotation = "kueue.x-k8s.io/pod-group-total-count"

	UseGPUTypeAnnotation          = "nvidia.com/use-gputype"
	GPUCoresLimitKey              = "nvidia.com/gpucores"
	GPUMemPercentageLimitKey      = "nvidia.com/gpumem-percentage"
	NodeSchedulerPolicyAnnotation = "hami.io/node-scheduler-policy"
	GPUSchedulerPolicyAnnotation  = "hami.io/gpu-scheduler-policy"
	BinpackPolicy                 = "binpack"

	GPUNodeLabel      = "hami.io/node-gpu"
	HamiSchedulerName = "hami-scheduler"
	PriorityLabel     = "priority"

	NvidiaGPUResource = "nvidia.com/gpu"

	DefaultFleetPrefix       = "violet"
	DefaultSlotCount         = 8
	DefaultGPUResourcePrefix = "example.com"
	DefaultQueueName         = "default"

	// Sentinel family for nodes whose name or labels carry no usable model.
	UnknownGPUFamily = "UNKNOWN"

	// Lowercase alphabet so generated suffixes stay valid DNS-1123 names.
	ShortUUIDAlphabet = "23456789abcdefghijkmnopqrstuvwxyz"

	// Provenance markers on GPU slots.
	SourcePodAnnotation = "pod_annotation"
	SourceNodeStatus    = "node_status"
)

// WorkloadGVR identifies the Kueue Workload custom resource consumed by the
// admission view.
var WorkloadGVR = schema.GroupVersionResource{
	Group:    "kueue.x-k8s.io",
	Version:  "v1beta1",
	Resource: "workloads",
}
