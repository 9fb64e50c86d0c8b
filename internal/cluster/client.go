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

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Client fetches cluster snapshots. It holds no state beyond the underlying
// connections; every call re-reads the cluster.
type Client struct {
	kube           kubernetes.Interface
	dyn            dynamic.Interface
	resourcePrefix string
}

// BuildRestConfig resolves the Kubernetes connection the usual way: an
// explicit kubeconfig path wins, otherwise in-cluster credentials.
func BuildRestConfig(kubeconfig string) (*rest.Config, error) {
	if kubeconfig != "" {
		return clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	return rest.InClusterConfig()
}

func NewClient(restConfig *rest.Config, resourcePrefix string) (*Client, error) {
	kube, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("create kubernetes client: %w", err)
	}
	dyn, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}
	return NewFromClients(kube, dyn, resourcePrefix), nil
}

// NewFromClients wires a Client from pre-built clientsets, used by tests with
// fakes.
func NewFromClients(kube kubernetes.Interface, dyn dynamic.Interface, resourcePrefix string) *Client {
	return &Client{kube: kube, dyn: dyn, resourcePrefix: resourcePrefix}
}

// Kube exposes the typed clientset for components that write to the cluster.
func (c *Client) Kube() kubernetes.Interface {
	return c.kube
}

// Snapshot is one consistent read of the node and pod state. PodsOn answers
// from an index built once at fetch time, so per-node reconciliation does not
// re-scan the full pod list.
type Snapshot struct {
	Nodes []corev1.Node
	Pods  []corev1.Pod

	podsByNode map[string][]*corev1.Pod
}

// ClusterSnapshot lists nodes and pods and indexes pods by node assignment.
// Either both lists succeed or an error is returned; a partial snapshot is
// never handed out.
func (c *Client) ClusterSnapshot(ctx context.Context) (*Snapshot, error) {
	nodes, err := c.kube.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	pods, err := c.kube.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}

	snap := &Snapshot{
		Nodes:      nodes.Items,
		Pods:       pods.Items,
		podsByNode: make(map[string][]*corev1.Pod, len(nodes.Items)),
	}
	for i := range snap.Pods {
		pod := &snap.Pods[i]
		if pod.Spec.NodeName == "" {
			continue
		}
		snap.podsByNode[pod.Spec.NodeName] = append(snap.podsByNode[pod.Spec.NodeName], pod)
	}
	return snap, nil
}

// PodsOn returns the pods assigned to the named node.
func (s *Snapshot) PodsOn(nodeName string) []*corev1.Pod {
	return s.podsByNode[nodeName]
}

// Node finds a node by name in the snapshot.
func (s *Snapshot) Node(name string) (*corev1.Node, bool) {
	for i := range s.Nodes {
		if s.Nodes[i].Name == name {
			return &s.Nodes[i], true
		}
	}
	return nil, false
}
