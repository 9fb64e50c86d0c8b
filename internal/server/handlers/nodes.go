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
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/Godmook/multigpu-be/internal/gpu"
	"github.com/Godmook/multigpu-be/internal/inventory"
	"github.com/Godmook/multigpu-be/internal/server/api"
)

// InventoryService is the node inventory surface the handlers need.
type InventoryService interface {
	ListNodes(ctx context.Context) ([]gpu.NodeInventory, error)
	NodeGPUs(ctx context.Context, nodeName string) (*gpu.NodeInventory, error)
	GPUPods(ctx context.Context, nodeName, gpuID string) ([]inventory.GPUPodUsage, error)
}

// NodesHandler handles node inventory endpoints
type NodesHandler struct {
	inventory InventoryService
}

// NewNodesHandler creates a new nodes handler
func NewNodesHandler(inventory InventoryService) *NodesHandler {
	return &NodesHandler{inventory: inventory}
}

// HandleListNodes handles GET /api/v1/nodes
func (h *NodesHandler) HandleListNodes(c *gin.Context) {
	nodes, err := h.inventory.ListNodes(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ListNodesResponse{Nodes: nodes})
}

// HandleNodeGPUs handles GET /api/v1/nodes/:name/gpus
func (h *NodesHandler) HandleNodeGPUs(c *gin.Context) {
	inv, err := h.inventory.NodeGPUs(c.Request.Context(), c.Param("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// HandleGPUPods handles GET /api/v1/nodes/:name/gpus/:uuid/pods
func (h *NodesHandler) HandleGPUPods(c *gin.Context) {
	nodeName := c.Param("name")
	gpuID := c.Param("uuid")
	pods, err := h.inventory.GPUPods(c.Request.Context(), nodeName, gpuID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.GPUPodsResponse{Node: nodeName, GPUID: gpuID, Pods: pods})
}

// abortWithError maps error kinds to status codes: client input problems and
// misses get their own codes, everything else counts as an upstream failure.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, inventory.ErrInvalidNodeName):
		status = http.StatusBadRequest
	case errors.Is(err, inventory.ErrNodeNotFound):
		status = http.StatusNotFound
	default:
		log.FromContext(c.Request.Context()).Error(err, "snapshot fetch failed",
			"path", c.FullPath())
	}
	c.AbortWithStatusJSON(status, api.ErrorResponse{Error: err.Error()})
}
