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

package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/Godmook/multigpu-be/internal/admission"
	"github.com/Godmook/multigpu-be/internal/cluster"
	"github.com/Godmook/multigpu-be/internal/config"
	"github.com/Godmook/multigpu-be/internal/inventory"
	"github.com/Godmook/multigpu-be/internal/jobs"
	"github.com/Godmook/multigpu-be/internal/server"
)

var (
	configPath = flag.String("config", "", "Path to the YAML config file")
	listenAddr = flag.String("listen-addr", "", "Listen address, overrides config")
	kubeconfig = flag.String("kubeconfig", "", "Path to a kubeconfig, overrides config")
	devMode    = flag.Bool("dev", false, "Enable development logging")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	ctrl.SetLogger(zap.New(zap.UseDevMode(*devMode)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		klog.Fatalf("Failed to load config: %v", err)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *kubeconfig != "" {
		cfg.Kubeconfig = *kubeconfig
	}

	restConfig, err := cluster.BuildRestConfig(cfg.Kubeconfig)
	if err != nil {
		klog.Fatalf("Failed to build Kubernetes config: %v", err)
	}
	client, err := cluster.NewClient(restConfig, cfg.GPUResourcePrefix)
	if err != nil {
		klog.Fatalf("Failed to create cluster client: %v", err)
	}

	inventoryService := inventory.NewService(client, cfg)
	admissionService := admission.NewService(client)
	jobManager := jobs.NewManager(client.Kube(), cfg)

	srv := server.NewServer(cfg.ListenAddr, inventoryService, admissionService, jobManager)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			klog.Fatalf("HTTP server failed: %v", err)
		}
	}()
	klog.Infof("multigpu backend started on %s", cfg.ListenAddr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	klog.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		klog.Errorf("HTTP server shutdown: %v", err)
	}
	klog.Info("Shutdown complete")
}
