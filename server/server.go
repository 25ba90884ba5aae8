package server

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bbits/apns-worker/apns"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

var (
	// Address is the IP address the HTTP server should bind to.
	Address = net.ParseIP("0.0.0.0")
	// Port is the port on which the HTTP server listens.
	Port uint16 = 9090
	// RawNotificationEndpoint is the URI of the raw push notification endpoint.
	RawNotificationEndpoint = "/notification"
	// ExpiredDeviceTokensEndpoint is the URI of the expired device tokens endpoint.
	ExpiredDeviceTokensEndpoint = "/expired-devices"

	notificationCounter uint64
	feedbackCounter     uint64
)

func setupHTTPCommandLineFlags(fs *pflag.FlagSet) {
	fs.IPVar(&Address, "address", Address, "IP address the HTTP server should bind to.")
	fs.Uint16Var(&Port, "port", Port, "Port on which the HTTP server should listen on.")
	fs.StringVar(&RawNotificationEndpoint, "notification-endpoint", RawNotificationEndpoint, "URI of the raw push notification endpoint.")
	fs.StringVar(&ExpiredDeviceTokensEndpoint, "expired-devices-endpoint", ExpiredDeviceTokensEndpoint, "URI of the expired device tokens endpoint.")
}

// rawNotification is the wire shape accepted by the raw notification
// endpoint; it mirrors apns.Message's constructor arguments.
type rawNotification struct {
	DeviceToken string        `json:"deviceToken"`
	Payload     *apns.Payload `json:"payload"`
	Expiration  *time.Time    `json:"expires,omitempty"`
	Priority    *int          `json:"priority,omitempty"`
}

// NewRawNotificationHTTPHandlerFunc returns a net/http handler that accepts
// a single raw notification as a JSON body and queues it with mgr.
func NewRawNotificationHTTPHandlerFunc(mgr *apns.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		startTime := time.Now()
		requestID := uuid.NewString()

		atomic.AddUint64(&notificationCounter, 1)

		logger.Infof("[%s] received send push notification request #%d", requestID, notificationCounter)

		w.Header().Set("Content-Type", "application/json; charset=utf8")

		if req.Method != http.MethodPost {
			finishResponse("Send push notification", notificationCounter, w, http.StatusMethodNotAllowed, nil, startTime)
			return
		}

		var body rawNotification
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			if errors.Is(err, io.EOF) {
				err = errors.New("notification data is missing")
			}

			logger.Errorf("[%s] error decoding notification data: %+v", requestID, err)
			writeError(w, "Send push notification", notificationCounter, http.StatusConflict, err, startTime)
			return
		}

		var opts []apns.MessageOption
		if body.Expiration != nil {
			opts = append(opts, apns.WithExpiration(*body.Expiration))
		}
		if body.Priority != nil {
			opts = append(opts, apns.WithPriority(*body.Priority))
		}

		payload := body.Payload
		if payload == nil {
			payload = apns.NewPayload()
		}

		message, err := apns.NewMessage([]string{body.DeviceToken}, payload, opts...)
		if err != nil {
			logger.Errorf("[%s] invalid notification: %+v", requestID, err)
			writeError(w, "Send push notification", notificationCounter, http.StatusConflict, err, startTime)
			return
		}

		mgr.SendMessage(message)

		responseData, _ := json.Marshal(body)
		finishResponse("Send push notification", notificationCounter, w, http.StatusAccepted, responseData, startTime)
	}
}

// NewExpiredDevicesHTTPHandlerFunc returns a net/http handler that polls the
// feedback service and reports expired device tokens.
func NewExpiredDevicesHTTPHandlerFunc(mgr *apns.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		startTime := time.Now()
		requestID := uuid.NewString()

		atomic.AddUint64(&feedbackCounter, 1)

		logger.Infof("[%s] received check feedback service request #%d", requestID, feedbackCounter)

		w.Header().Set("Content-Type", "application/json; charset=utf8")

		if req.Method != http.MethodGet {
			finishResponse("Check feedback service", feedbackCounter, w, http.StatusMethodNotAllowed, nil, startTime)
			return
		}

		var records []apns.FeedbackRecord
		err := mgr.GetFeedback(req.Context(), func(rec apns.FeedbackRecord) {
			records = append(records, rec)
		})
		if err != nil {
			logger.Errorf("[%s] error checking feedback service: %+v", requestID, err)
			writeError(w, "Check feedback service", feedbackCounter, http.StatusInternalServerError, err, startTime)
			return
		}

		responseData, _ := json.Marshal(&struct {
			Devices []apns.FeedbackRecord `json:"devices"`
		}{Devices: records})

		finishResponse("Check feedback service", feedbackCounter, w, http.StatusOK, responseData, startTime)
	}
}

func writeError(w http.ResponseWriter, requestType string, counter uint64, status int, err error, startTime time.Time) {
	responseData, _ := json.Marshal(&struct {
		Error string `json:"error"`
	}{Error: err.Error()})

	finishResponse(requestType, counter, w, status, responseData, startTime)
}

func finishResponse(requestType string, counter uint64, w http.ResponseWriter, status int, responseData []byte, startTime time.Time) {
	w.WriteHeader(status)

	if len(responseData) > 0 {
		w.Write(responseData)
	}

	logger.Infof("%s request #%d finished with %s (%d) in %s", requestType, counter, http.StatusText(status), status, time.Since(startTime))
}
