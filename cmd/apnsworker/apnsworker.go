// Command apnsworker runs the APNs delivery engine as a small HTTP
// "microservice": it exposes an endpoint for queuing raw push notifications
// and one for polling the Feedback service.
//
// Usage
//
// List all available options:
//  apnsworker --help
package main

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"os"

	log "github.com/coreos/pkg/capnslog"
	"github.com/spf13/pflag"

	"github.com/bbits/apns-worker/apns"
	"github.com/bbits/apns-worker/server"
)

var apnsLogger, serverLogger *log.PackageLogger

func init() {
	log.SetFormatter(log.NewPrettyFormatter(os.Stdout, true))
	apnsLogger = log.NewPackageLogger("apns-worker", "apns")
	serverLogger = log.NewPackageLogger("apns-worker", "http")

	log.SetGlobalLogLevel(log.INFO)

	apns.SetLogger(apnsLogger)
	server.SetLogger(serverLogger)
}

func main() {
	apns.SetupCommandLineFlags(pflag.CommandLine)
	server.SetupCommandLineFlags(pflag.CommandLine)
	pflag.Parse()

	config := apns.NewManagerConfig()
	config.ErrorHandler = func(e apns.Error) {
		apnsLogger.Warningf("delivery error: %s", e.Error())
	}

	mgr, err := apns.NewManager(config, tls.Certificate{},
		apns.WithPEMCredentials(config.CertificateFile, config.CertificatePrivateKeyFile))
	if err != nil {
		apnsLogger.Fatalf("failed to create APNs manager: %s", err)
		return
	}
	mgr.Start()
	defer mgr.Stop()

	http.HandleFunc(server.RawNotificationEndpoint, server.NewRawNotificationHTTPHandlerFunc(mgr))
	http.HandleFunc(server.ExpiredDeviceTokensEndpoint, server.NewExpiredDevicesHTTPHandlerFunc(mgr))

	addr := fmt.Sprintf("%s:%d", server.Address.String(), server.Port)
	serverLogger.Infof("starting server %s", addr)

	if err := http.ListenAndServe(addr, nil); err != nil {
		serverLogger.Fatalf("server failed to start: %s", err)
	}
}
