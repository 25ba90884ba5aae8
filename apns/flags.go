package apns

import (
	"time"

	"github.com/spf13/pflag"
)

const (
	// APNSGatewayProduction is Apple's production push gateway hostname.
	APNSGatewayProduction = "gateway.push.apple.com"

	// APNSGatewaySandbox is Apple's sandbox push gateway hostname.
	APNSGatewaySandbox = "gateway.sandbox.push.apple.com"

	// APNSGatewayPort is the legacy binary protocol's TCP port.
	APNSGatewayPort uint16 = 2195

	// FeedbackGatewayProduction is Apple's production feedback service hostname.
	FeedbackGatewayProduction = "feedback.push.apple.com"

	// FeedbackGatewaySandbox is Apple's sandbox feedback service hostname.
	FeedbackGatewaySandbox = "feedback.sandbox.push.apple.com"

	// FeedbackGatewayPort is the feedback service's TCP port.
	FeedbackGatewayPort uint16 = 2196

	// DefaultMessageGrace is the default claimed-notification grace window.
	DefaultMessageGrace = 5 * time.Second
)

var (
	env                       = "sandbox"
	messageGrace              = DefaultMessageGrace
	certificateFile           string
	certificatePrivateKeyFile string

	apnsGatewayProduction     = APNSGatewayProduction
	apnsGatewaySandbox        = APNSGatewaySandbox
	apnsGatewayPort           = APNSGatewayPort
	feedbackGatewayProduction = FeedbackGatewayProduction
	feedbackGatewaySandbox    = FeedbackGatewaySandbox
	feedbackGatewayPort       = FeedbackGatewayPort
)

// SetupCommandLineFlags sets all necessary command line flags and their defaults.
func SetupCommandLineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&env, "env", env, "Environment of Apple's APNS and Feedback service gateways. For production use specify \"production\", for testing specify \"sandbox\".")
	fs.DurationVar(&messageGrace, "message-grace", messageGrace, "How long a claimed notification is held in the queue awaiting a late error response before it is presumed delivered.")
	fs.StringVar(&certificateFile, "cert", certificateFile, "Absolute path to certificate file. Certificate is expected to be in PEM format.")
	fs.StringVar(&certificatePrivateKeyFile, "cert-key", certificatePrivateKeyFile, "Absolute path to certificate private key file. Key is expected to be in PEM format.")

	fs.StringVar(&apnsGatewayProduction, "apns-gate-production", apnsGatewayProduction, "FQDN of Apple's APNS production gateway.")
	fs.StringVar(&apnsGatewaySandbox, "apns-gate-sandbox", apnsGatewaySandbox, "FQDN of Apple's APNS sandbox gateway.")
	fs.Uint16Var(&apnsGatewayPort, "apns-gate-port", apnsGatewayPort, "Apple's APNS port number.")
	fs.StringVar(&feedbackGatewayProduction, "feedback-gate-production", feedbackGatewayProduction, "FQDN of Apple's Feedback service production gateway.")
	fs.StringVar(&feedbackGatewaySandbox, "feedback-gate-sandbox", feedbackGatewaySandbox, "FQDN of Apple's Feedback service sandbox gateway.")
	fs.Uint16Var(&feedbackGatewayPort, "feedback-gate-port", feedbackGatewayPort, "Apple's Feedback service port number.")
}

// ManagerConfig holds configuration for a Manager.
type ManagerConfig struct {
	// Env is either "production" or "sandbox".
	Env string

	// CertificateFile is the absolute path to the APNs certificate file.
	CertificateFile string

	// CertificatePrivateKeyFile is the absolute path to the certificate's private key.
	CertificatePrivateKeyFile string

	// MessageGrace is how long a claimed notification stays in the queue
	// awaiting a late error response.
	MessageGrace time.Duration

	// ErrorHandler, if set, receives per-notification delivery errors.
	ErrorHandler func(Error)
}

// NewManagerConfig returns a ManagerConfig populated from the package's
// command line flags (see SetupCommandLineFlags).
func NewManagerConfig() *ManagerConfig {
	return &ManagerConfig{
		Env:                       env,
		CertificateFile:           certificateFile,
		CertificatePrivateKeyFile: certificatePrivateKeyFile,
		MessageGrace:              messageGrace,
	}
}

func gatewayAddress(production bool) (string, uint16) {
	if production {
		return apnsGatewayProduction, apnsGatewayPort
	}
	return apnsGatewaySandbox, apnsGatewayPort
}

func feedbackAddress(production bool) (string, uint16) {
	if production {
		return feedbackGatewayProduction, feedbackGatewayPort
	}
	return feedbackGatewaySandbox, feedbackGatewayPort
}
