// Package apns is a client for Apple's legacy binary Push Notification
// service (command 2) and its companion Feedback service.
//
// A Manager owns a single TLS connection to one APNs environment. Callers
// hand it Messages; internally a claimable NotificationQueue and a pair of
// reader/writer goroutines pipeline notifications onto the wire and
// reconcile asynchronous error frames against the in-flight queue,
// reconnecting transparently when the server closes the connection.
package apns
