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

package api

import (
	"github.com/Godmook/multigpu-be/internal/admission"
	"github.com/Godmook/multigpu-be/internal/gpu"
	"github.com/Godmook/multigpu-be/internal/inventory"
	"github.com/Godmook/multigpu-be/internal/jobs"
)

// HTTP API response types

// StatusResponse represents a health probe response
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListNodesResponse represents the response from GET /api/v1/nodes
type ListNodesResponse struct {
	Nodes []gpu.NodeInventory `json:"nodes"`
}

// GPUPodsResponse represents the response from
// GET /api/v1/nodes/:name/gpus/:uuid/pods
type GPUPodsResponse struct {
	Node  string                  `json:"node"`
	GPUID string                  `json:"gpuId"`
	Pods  []inventory.GPUPodUsage `json:"pods"`
}

// PendingWorkloadsResponse represents the response from
// GET /api/v1/workloads/pending
type PendingWorkloadsResponse struct {
	PendingWorkloads map[string][]admission.Workload `json:"pendingWorkloads"`
}

// PendingJobsResponse represents the response from GET /api/v1/jobs/pending
type PendingJobsResponse struct {
	PendingJobs []jobs.JobInfo `json:"pendingJobs"`
}

// JobsByTypeResponse represents the response from GET /api/v1/jobs/gpu-type/:type
type JobsByTypeResponse struct {
	Jobs []string `json:"jobs"`
}

// SubmitResponse represents the response from POST /api/v1/jobs
type SubmitResponse struct {
	Submitted bool   `json:"submitted"`
	JobName   string `json:"jobName"`
}

// DeleteResponse represents the response from DELETE /api/v1/jobs/:name
type DeleteResponse struct {
	Deleted bool   `json:"deleted"`
	JobID   string `json:"jobId"`
}

// PriorityResponse represents the response from PATCH /api/v1/jobs/:name/priority
type PriorityResponse struct {
	JobID       string `json:"jobId"`
	NewPriority string `json:"newPriority"`
}

// PriorityRequest is the body of PATCH /api/v1/jobs/:name/priority
type PriorityRequest struct {
	Priority string `json:"priority" binding:"required"`
}
