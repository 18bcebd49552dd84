/*


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
	"path/filepath"
	"syscall"

	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AmirulAndalib/fas-rs/internal/config"
	"github.com/AmirulAndalib/fas-rs/internal/monitoring"
	"github.com/AmirulAndalib/fas-rs/internal/scaling"
	"github.com/AmirulAndalib/fas-rs/internal/touch"
	"github.com/AmirulAndalib/fas-rs/internal/writer"
)

const cpufreqGlob = "/sys/devices/system/cpu/cpufreq/policy*"

func main() {
	var configPath string
	var nodeDir string
	var metricsAddr string
	var verbosity int
	flag.StringVar(&configPath, "config", "/sdcard/Android/fas-rs/config.yaml", "Path to the governor config file.")
	flag.StringVar(&nodeDir, "node-dir", "/dev/fas_rs", "Directory holding runtime tunable nodes.")
	flag.StringVar(&metricsAddr, "metrics-bind-address", ":10001", "The address the metric endpoint binds to.")
	flag.IntVar(&verbosity, "v", 0, "Log verbosity level.")
	flag.Parse()

	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	zapLog, err := zapCfg.Build()
	if err != nil {
		os.Exit(1)
	}
	log := zapr.NewLogger(zapLog)
	setupLog := log.WithName("setup")

	cfg, err := config.Load(configPath)
	if err != nil {
		setupLog.Error(err, "unable to load config", "path", configPath)
		os.Exit(1)
	}

	paths, err := filepath.Glob(cpufreqGlob)
	if err != nil || len(paths) == 0 {
		setupLog.Error(err, "no cpufreq policy clusters found", "glob", cpufreqGlob)
		os.Exit(1)
	}

	clusters := make([]*scaling.Cluster, 0, len(paths))
	totalCores := 0
	for _, path := range paths {
		cluster := scaling.NewCluster(path)
		cores, err := cluster.AffectedCPUs()
		if err != nil {
			setupLog.Error(err, "unable to read cluster topology", "cluster", path)
			os.Exit(1)
		}
		totalCores += len(cores)
		clusters = append(clusters, cluster)
	}

	pool := writer.NewPool(max(totalCores/2, 2), log.WithName("writer"))
	node := config.NewDirNode(nodeDir)

	mgr, err := scaling.NewManager(clusters, cfg, node, touch.NopListener(), pool, log.WithName("scaling"))
	if err != nil {
		setupLog.Error(err, "unable to start cluster workers")
		os.Exit(1)
	}

	if err := monitoring.RegisterClusterCollectors(
		prometheus.DefaultRegisterer, mgr.Schedules(), log.WithName(monitoring.LogTopName),
	); err != nil {
		setupLog.Error(err, "unable to register metrics collectors")
		os.Exit(1)
	}
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(metricsAddr, nil); err != nil {
			setupLog.Error(err, "metrics endpoint failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	setupLog.Info("governor running", "clusters", len(clusters))
	if err := mgr.Start(ctx); err != nil {
		setupLog.Error(err, "problem running scaling manager")
		os.Exit(1)
	}
}
