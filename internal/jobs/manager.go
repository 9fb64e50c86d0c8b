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

package jobs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/Godmook/multigpu-be/internal/config"
	"github.com/Godmook/multigpu-be/internal/constants"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobExists   = errors.New("job already exists")
)

// Per-GPU baselines for deriving CPU and memory from the percentage knobs.
const (
	baseCPUPerGPU   = 8
	baseMemMiPerGPU = 64000
)

// SubmitRequest is the structured job submission payload.
type SubmitRequest struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`

	GPUCount   int `json:"gpuCount" binding:"required,min=1"`
	CPUPercent int `json:"cpuPercent" binding:"required,min=1,max=100"`
	MemPercent int `json:"memPercent" binding:"required,min=1,max=100"`
	GPUPercent int `json:"gpuPercent" binding:"required,min=1,max=100"`

	UserName string `json:"userName" binding:"required"`
	TeamName string `json:"teamName" binding:"required"`
	Priority string `json:"priority" binding:"required"`
	GPUType  string `json:"gpuType"`

	Image   string   `json:"image"`
	Command []string `json:"command"`

	GangScheduling bool   `json:"gangScheduling"`
	GangCount      int    `json:"gangCount"`
	GangID         string `json:"gangId"`
}

// JobInfo is one waiting job in the pending listing.
type JobInfo struct {
	JobID     string    `json:"jobId"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
	UserName  string    `json:"userName"`
	TeamName  string    `json:"teamName"`
	Status    string    `json:"status"`
	GPUType   string    `json:"gpuType,omitempty"`
}

// Manager submits and manages queued GPU jobs.
type Manager struct {
	kube kubernetes.Interface
	cfg  *config.Config
}

func NewManager(kube kubernetes.Interface, cfg *config.Config) *Manager {
	return &Manager{kube: kube, cfg: cfg}
}

// Submit builds a suspended batch Job from the request and creates it. The
// generated name is returned.
func (m *Manager) Submit(ctx context.Context, req *SubmitRequest) (string, error) {
	namespace := req.Namespace
	if namespace == "" {
		namespace = m.cfg.JobNamespace
	}
	name := req.Name
	if name == "" {
		name = generateJobName()
	}

	job := m.buildJob(name, namespace, req)
	if _, err := m.kube.BatchV1().Jobs(namespace).Create(ctx, job, metav1.CreateOptions{}); err != nil {
		if apierrors.IsAlreadyExists(err) {
			return "", fmt.Errorf("%w: %q", ErrJobExists, name)
		}
		return "", fmt.Errorf("create job %q: %w", name, err)
	}
	log.FromContext(ctx).Info("job created", "job", name, "namespace", namespace)
	return name, nil
}

// SubmitRaw creates a caller-built Job manifest as-is, except that a name
// collision is resolved by appending a unique suffix, and gang labels on the
// job are propagated to the pod template.
func (m *Manager) SubmitRaw(ctx context.Context, job *batchv1.Job) (string, error) {
	if job.Name == "" {
		job.Name = generateJobName()
	}
	if job.Namespace == "" {
		job.Namespace = m.cfg.JobNamespace
	}

	if _, err := m.kube.BatchV1().Jobs(job.Namespace).Get(ctx, job.Name, metav1.GetOptions{}); err == nil {
		job.Name = fmt.Sprintf("%s-%s", job.Name, shortSuffix())
	}

	propagateGangMetadata(job)

	if _, err := m.kube.BatchV1().Jobs(job.Namespace).Create(ctx, job, metav1.CreateOptions{}); err != nil {
		if apierrors.IsAlreadyExists(err) {
			return "", fmt.Errorf("%w: %q", ErrJobExists, job.Name)
		}
		return "", fmt.Errorf("create job %q: %w", job.Name, err)
	}
	log.FromContext(ctx).Info("job created from raw manifest", "job", job.Name, "namespace", job.Namespace)
	return job.Name, nil
}

// Delete removes a job.
func (m *Manager) Delete(ctx context.Context, name, namespace string) error {
	if namespace == "" {
		namespace = m.cfg.JobNamespace
	}
	policy := metav1.DeletePropagationBackground
	err := m.kube.BatchV1().Jobs(namespace).Delete(ctx, name, metav1.DeleteOptions{PropagationPolicy: &policy})
	if apierrors.IsNotFound(err) {
		return fmt.Errorf("%w: %q", ErrJobNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("delete job %q: %w", name, err)
	}
	return nil
}

// UpdatePriority patches the job's priority label.
func (m *Manager) UpdatePriority(ctx context.Context, name, namespace, priority string) error {
	if namespace == "" {
		namespace = m.cfg.JobNamespace
	}
	patch := fmt.Sprintf(`{"metadata":{"labels":{%q:%q}}}`, constants.PriorityLabel, priority)
	_, err := m.kube.BatchV1().Jobs(namespace).Patch(ctx, name,
		types.MergePatchType, []byte(patch), metav1.PatchOptions{})
	if apierrors.IsNotFound(err) {
		return fmt.Errorf("%w: %q", ErrJobNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("patch job %q priority: %w", name, err)
	}
	return nil
}

// PendingJobs lists jobs still suspended, i.e. not yet released by the
// admission controller.
func (m *Manager) PendingJobs(ctx context.Context) ([]JobInfo, error) {
	list, err := m.kube.BatchV1().Jobs(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	pending := []JobInfo{}
	for i := range list.Items {
		job := &list.Items[i]
		if job.Spec.Suspend == nil || !*job.Spec.Suspend {
			continue
		}
		priority := job.Labels[constants.PriorityLabel]
		if priority == "" {
			priority = "Normal"
		}
		pending = append(pending, JobInfo{
			JobID:     job.Name,
			Priority:  priority,
			CreatedAt: job.CreationTimestamp.Time,
			UserName:  job.Annotations[constants.UserAnnotation],
			TeamName:  job.Annotations[constants.TeamAnnotation],
			Status:    "Pending",
			GPUType:   jobGPUType(job),
		})
	}
	return pending, nil
}

// JobsByGPUType returns the names of jobs pinned to the given GPU type.
func (m *Manager) JobsByGPUType(ctx context.Context, gpuType string) ([]string, error) {
	list, err := m.kube.BatchV1().Jobs(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	names := []string{}
	for i := range list.Items {
		if strings.EqualFold(jobGPUType(&list.Items[i]), gpuType) {
			names = append(names, list.Items[i].Name)
		}
	}
	return names, nil
}

func (m *Manager) buildJob(name, namespace string, req *SubmitRequest) *batchv1.Job {
	cpu := baseCPUPerGPU * req.GPUCount * req.CPUPercent / 100
	memMi := baseMemMiPerGPU * req.GPUCount * req.MemPercent / 100
	gpuResource := corev1.ResourceName(m.cfg.GPUResourcePrefix + "/gpu")

	labels := map[string]string{
		"app":                    "k8s-gpu-job",
		constants.QueueNameLabel: m.cfg.QueueName,
		constants.PriorityLabel:  req.Priority,
	}
	jobAnnotations := map[string]string{
		constants.UserAnnotation: req.UserName,
		constants.TeamAnnotation: req.TeamName,
	}
	podAnnotations := map[string]string{
		constants.UserAnnotation:                req.UserName,
		constants.TeamAnnotation:                req.TeamName,
		constants.NodeSchedulerPolicyAnnotation: constants.BinpackPolicy,
		constants.GPUSchedulerPolicyAnnotation:  constants.BinpackPolicy,
	}
	if req.GPUType != "" {
		podAnnotations[constants.UseGPUTypeAnnotation] = req.GPUType
		jobAnnotations[constants.UseGPUTypeAnnotation] = req.GPUType
	}

	podLabels := map[string]string{}
	for k, v := range labels {
		podLabels[k] = v
	}

	parallelism := int32(1)
	if req.GangScheduling && req.GangCount > 1 {
		parallelism = int32(req.GangCount)
		gangID := req.GangID
		if gangID == "" {
			gangID = name
		}
		podLabels[constants.PodGroupNameLabel] = gangID
		jobAnnotations[constants.PodGroupTotalAnnotation] = strconv.Itoa(req.GangCount)
		podAnnotations[constants.PodGroupTotalAnnotation] = strconv.Itoa(req.GangCount)
	}

	image := req.Image
	if image == "" {
		image = m.cfg.JobImage
	}
	command := req.Command
	if len(command) == 0 {
		command = []string{"sleep", "infinity"}
	}

	requests := corev1.ResourceList{
		gpuResource:           *resource.NewQuantity(int64(req.GPUCount), resource.DecimalSI),
		corev1.ResourceCPU:    *resource.NewQuantity(int64(cpu), resource.DecimalSI),
		corev1.ResourceMemory: resource.MustParse(fmt.Sprintf("%dMi", memMi)),
	}
	limits := corev1.ResourceList{
		gpuResource:           *resource.NewQuantity(int64(req.GPUCount), resource.DecimalSI),
		corev1.ResourceCPU:    *resource.NewQuantity(int64(cpu), resource.DecimalSI),
		corev1.ResourceMemory: resource.MustParse(fmt.Sprintf("%dMi", memMi)),
		constants.GPUCoresLimitKey: *resource.NewQuantity(
			int64(req.GPUPercent), resource.DecimalSI),
		constants.GPUMemPercentageLimitKey: *resource.NewQuantity(
			int64(req.GPUPercent), resource.DecimalSI),
	}

	return &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Namespace:   namespace,
			Labels:      labels,
			Annotations: jobAnnotations,
		},
		Spec: batchv1.JobSpec{
			Suspend:      ptr.To(true),
			Parallelism:  ptr.To(parallelism),
			Completions:  ptr.To(parallelism),
			BackoffLimit: ptr.To(int32(2)),
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels:      podLabels,
					Annotations: podAnnotations,
				},
				Spec: corev1.PodSpec{
					SchedulerName: constants.HamiSchedulerName,
					RestartPolicy: corev1.RestartPolicyNever,
					NodeSelector:  map[string]string{constants.GPUNodeLabel: "true"},
					Tolerations: []corev1.Toleration{{
						Key:      "gpu",
						Operator: corev1.TolerationOpExists,
						Effect:   corev1.TaintEffectNoSchedule,
					}},
					Containers: []corev1.Container{{
						Name:    "main",
						Image:   image,
						Command: command,
						Resources: corev1.ResourceRequirements{
							Requests: requests,
							Limits:   limits,
						},
					}},
				},
			},
		},
	}
}

// propagateGangMetadata mirrors gang labels from the job down to the pod
// template so the queue controller can count the whole group.
func propagateGangMetadata(job *batchv1.Job) {
	gangID := job.Labels[constants.PodGroupNameLabel]
	if gangID == "" {
		return
	}
	if job.Spec.Template.Labels == nil {
		job.Spec.Template.Labels = map[string]string{}
	}
	job.Spec.Template.Labels[constants.PodGroupNameLabel] = gangID

	total := job.Annotations[constants.PodGroupTotalAnnotation]
	if total == "" {
		return
	}
	if job.Spec.Template.Annotations == nil {
		job.Spec.Template.Annotations = map[string]string{}
	}
	job.Spec.Template.Annotations[constants.PodGroupTotalAnnotation] = total
}

func jobGPUType(job *batchv1.Job) string {
	if t := job.Annotations[constants.UseGPUTypeAnnotation]; t != "" {
		return t
	}
	return job.Spec.Template.Annotations[constants.UseGPUTypeAnnotation]
}

func generateJobName() string {
	return fmt.Sprintf("job-%s-%s", time.Now().UTC().Format("20060102150405"), shortSuffix())
}

func shortSuffix() string {
	id := shortuuid.NewWithAlphabet(constants.ShortUUIDAlphabet)
	if len(id) > 6 {
		id = id[:6]
	}
	return id
}
