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

package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/Godmook/multigpu-be/internal/admission"
	"github.com/Godmook/multigpu-be/internal/server/api"
)

// AdmissionService is the queue view surface the handlers need.
type AdmissionService interface {
	Pending(ctx context.Context) (map[string][]admission.Workload, error)
}

// WorkloadsHandler handles admission queue endpoints
type WorkloadsHandler struct {
	admission AdmissionService
}

// NewWorkloadsHandler creates a new workloads handler
func NewWorkloadsHandler(admission AdmissionService) *WorkloadsHandler {
	return &WorkloadsHandler{admission: admission}
}

// HandlePendingWorkloads handles GET /api/v1/workloads/pending
func (h *WorkloadsHandler) HandlePendingWorkloads(c *gin.Context) {
	groups, err := h.admission.Pending(c.Request.Context())
	if err != nil {
		log.FromContext(c.Request.Context()).Error(err, "workload queue fetch failed")
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, api.PendingWorkloadsResponse{PendingWorkloads: groups})
}
