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

package cluster

import (
	"context"
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/Godmook/multigpu-be/internal/admission"
	"github.com/Godmook/multigpu-be/internal/constants"
)

// Workloads lists the Kueue workload queue and projects each item into the
// admission model. Implements admission.Source.
func (c *Client) Workloads(ctx context.Context) ([]admission.Workload, error) {
	list, err := c.dyn.Resource(constants.WorkloadGVR).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list workloads: %w", err)
	}

	workloads := make([]admission.Workload, 0, len(list.Items))
	for i := range list.Items {
		workloads = append(workloads, c.projectWorkload(&list.Items[i]))
	}
	return workloads, nil
}

func (c *Client) projectWorkload(u *unstructured.Unstructured) admission.Workload {
	annotations := u.GetAnnotations()

	queue := u.GetLabels()[constants.QueueNameLabel]
	if queue == "" {
		queue, _, _ = unstructured.NestedString(u.Object, "spec", "queueName")
	}
	priority, _, _ := unstructured.NestedInt64(u.Object, "spec", "priority")

	// Kueue marks admission by filling status.admission; absence means the
	// workload is still waiting.
	_, admitted, _ := unstructured.NestedMap(u.Object, "status", "admission")

	return admission.Workload{
		Name:             u.GetName(),
		Namespace:        u.GetNamespace(),
		QueueName:        queue,
		Priority:         priority,
		CreatedAt:        u.GetCreationTimestamp().Time,
		ResourceRequests: c.workloadResourceRequests(u),
		UserName:         annotations[constants.UserAnnotation],
		TeamName:         annotations[constants.TeamAnnotation],
		Admitted:         admitted,
	}
}

// workloadResourceRequests walks spec.podSets[].template.spec.containers[]
// and keeps the container resource requests under the configured GPU resource
// prefix.
func (c *Client) workloadResourceRequests(u *unstructured.Unstructured) map[string]string {
	requests := map[string]string{}
	prefix := c.resourcePrefix + "/"

	podSets, _, _ := unstructured.NestedSlice(u.Object, "spec", "podSets")
	for _, ps := range podSets {
		psMap, ok := ps.(map[string]any)
		if !ok {
			continue
		}
		containers, _, _ := unstructured.NestedSlice(psMap, "template", "spec", "containers")
		for _, container := range containers {
			cMap, ok := container.(map[string]any)
			if !ok {
				continue
			}
			reqs, _, _ := unstructured.NestedMap(cMap, "resources", "requests")
			for name, quantity := range reqs {
				if strings.HasPrefix(name, prefix) {
					requests[name] = fmt.Sprintf("%v", quantity)
				}
			}
		}
	}
	return requests
}
