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

package inventory

import (
	"context"
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/Godmook/multigpu-be/internal/cluster"
	"github.com/Godmook/multigpu-be/internal/config"
	"github.com/Godmook/multigpu-be/internal/constants"
	"github.com/Godmook/multigpu-be/internal/gpu"
	"github.com/Godmook/multigpu-be/internal/metrics"
)

var (
	// ErrInvalidNodeName marks a single-node lookup whose name does not
	// follow the fleet convention; a client-input problem, not a miss.
	ErrInvalidNodeName = errors.New("invalid node name")

	// ErrNodeNotFound marks a well-formed name with no matching node.
	ErrNodeNotFound = errors.New("node not found")
)

// Source supplies the cluster snapshot. Implemented by the cluster client.
type Source interface {
	ClusterSnapshot(ctx context.Context) (*cluster.Snapshot, error)
}

// GPUPodUsage is one pod's share of one GPU, for the per-GPU drill-down.
type GPUPodUsage struct {
	PodName         string `json:"podName"`
	Namespace       string `json:"namespace"`
	AllocationUnits int    `json:"allocationUnits"`
	UserName        string `json:"userName"`
	TeamName        string `json:"teamName"`
}

// Service reconciles snapshots into per-node GPU inventories. Stateless;
// every call works on a fresh snapshot.
type Service struct {
	source         Source
	namer          *gpu.Namer
	slotCount      int
	gpuResourceKey corev1.ResourceName
}

func NewService(source Source, cfg *config.Config) *Service {
	return &Service{
		source:         source,
		namer:          gpu.NewNamer(cfg.FleetPrefix),
		slotCount:      cfg.SlotCount,
		gpuResourceKey: corev1.ResourceName(cfg.GPUResourcePrefix + "/gpu"),
	}
}

// ListNodes returns inventories for every fleet node. Nodes outside the
// naming convention are skipped, not an error.
func (s *Service) ListNodes(ctx context.Context) ([]gpu.NodeInventory, error) {
	snap, err := s.source.ClusterSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	inventories := make([]gpu.NodeInventory, 0, len(snap.Nodes))
	for i := range snap.Nodes {
		node := &snap.Nodes[i]
		if _, ok := s.namer.Classify(node.Name); !ok {
			continue
		}
		inventories = append(inventories, s.buildInventory(ctx, node, snap.PodsOn(node.Name)))
	}
	return inventories, nil
}

// NodeGPUs returns one node's inventory. Invalid names and missing nodes
// fail with distinct error kinds.
func (s *Service) NodeGPUs(ctx context.Context, nodeName string) (*gpu.NodeInventory, error) {
	if _, ok := s.namer.Classify(nodeName); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNodeName, nodeName)
	}
	snap, err := s.source.ClusterSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	node, ok := snap.Node(nodeName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, nodeName)
	}
	inv := s.buildInventory(ctx, node, snap.PodsOn(nodeName))
	return &inv, nil
}

// GPUPods lists every pod holding a share of the given GPU on the given node.
func (s *Service) GPUPods(ctx context.Context, nodeName, gpuID string) ([]GPUPodUsage, error) {
	if _, ok := s.namer.Classify(nodeName); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNodeName, nodeName)
	}
	snap, err := s.source.ClusterSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.Node(nodeName); !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, nodeName)
	}

	usages := []GPUPodUsage{}
	for _, pod := range snap.PodsOn(nodeName) {
		for _, a := range podAllocations(pod) {
			if a.Record.GPUID != gpuID {
				continue
			}
			usages = append(usages, GPUPodUsage{
				PodName:         a.PodName,
				Namespace:       pod.Namespace,
				AllocationUnits: a.Record.Units,
				UserName:        a.UserName,
				TeamName:        a.TeamName,
			})
		}
	}
	return usages, nil
}

func (s *Service) buildInventory(ctx context.Context, node *corev1.Node, pods []*corev1.Pod) gpu.NodeInventory {
	family := s.nodeFamily(node)

	var allocs []gpu.PodAllocation
	for _, pod := range pods {
		allocs = append(allocs, podAllocations(pod)...)
	}

	slots := gpu.AggregateByGPU(allocs, family)
	slots = appendRegisteredGPUs(slots, node, family)

	status := s.nodeStatus(node, slots)

	normalized, surplus := gpu.NormalizeSlots(slots, s.slotCount, family)
	if surplus > 0 {
		metrics.SurplusGPUsTruncated.Add(float64(surplus))
		log.FromContext(ctx).Info("truncated surplus GPU entries",
			"node", node.Name, "dropped", surplus, "slotCount", s.slotCount)
	}

	return gpu.NodeInventory{
		Name:      node.Name,
		Family:    family,
		SlotCount: s.slotCount,
		Status:    status,
		Slots:     normalized,
	}
}

// nodeFamily prefers the product label over the name-derived family.
func (s *Service) nodeFamily(node *corev1.Node) string {
	if product := node.Labels[constants.GPUProductLabel]; product != "" {
		return product
	}
	return s.namer.Family(node.Name)
}

// podAllocations parses one pod's allocation annotation into attributed
// records. Malformed tokens are dropped and counted; pods without the
// annotation contribute nothing.
func podAllocations(pod *corev1.Pod) []gpu.PodAllocation {
	text := pod.Annotations[constants.PodAllocationAnnotation]
	if text == "" {
		return nil
	}
	records, dropped := gpu.ParseAllocationStats(text, 0)
	if dropped > 0 {
		metrics.AllocationTokensDropped.Add(float64(dropped))
	}

	allocs := make([]gpu.PodAllocation, 0, len(records))
	for _, record := range records {
		allocs = append(allocs, gpu.PodAllocation{
			PodName:  pod.Name,
			Record:   record,
			UserName: pod.Annotations[constants.UserAnnotation],
			TeamName: pod.Annotations[constants.TeamAnnotation],
		})
	}
	return allocs
}

// appendRegisteredGPUs adds zero-allocation slots for GPUs the node registrar
// announced but no pod currently consumes, so idle hardware still shows up.
func appendRegisteredGPUs(slots []gpu.GPUSlot, node *corev1.Node, family string) []gpu.GPUSlot {
	text := node.Annotations[constants.NodeRegisterAnnotation]
	if text == "" {
		return slots
	}
	records, dropped := gpu.ParseAllocationStats(text, 0)
	if dropped > 0 {
		metrics.AllocationTokensDropped.Add(float64(dropped))
	}

	seen := make(map[string]bool, len(slots))
	for _, slot := range slots {
		seen[slot.GPUID] = true
	}
	for _, record := range records {
		if record.GPUID == "" || seen[record.GPUID] {
			continue
		}
		seen[record.GPUID] = true
		slots = append(slots, gpu.GPUSlot{
			GPUID:    record.GPUID,
			Family:   family,
			Source:   constants.SourceNodeStatus,
			Pods:     []string{},
			Segments: []gpu.TenantSegment{},
		})
	}
	return slots
}

// nodeStatus: Active when pods hold allocations, Available when the node has
// GPUs but nothing allocated, NoGPU otherwise.
func (s *Service) nodeStatus(node *corev1.Node, slots []gpu.GPUSlot) gpu.NodeStatus {
	for _, slot := range slots {
		if len(slot.Pods) > 0 {
			return gpu.NodeStatusActive
		}
	}
	if len(slots) > 0 || s.hasGPUCapacity(node) {
		return gpu.NodeStatusAvailable
	}
	return gpu.NodeStatusNoGPU
}

func (s *Service) hasGPUCapacity(node *corev1.Node) bool {
	for _, key := range []corev1.ResourceName{constants.NvidiaGPUResource, s.gpuResourceKey} {
		if quantity, ok := node.Status.Allocatable[key]; ok && !quantity.IsZero() {
			return true
		}
	}
	return false
}
