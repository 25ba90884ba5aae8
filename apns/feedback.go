package apns

import "context"

// FeedbackClient consumes the APNs feedback service: a stream of
// (timestamp, token) records naming devices that can no longer receive
// notifications. It is independent of the delivery engine and opens its
// own transport.
type FeedbackClient struct {
	transport Transport
}

// NewFeedbackClient returns a FeedbackClient that will connect to the
// feedback endpoint described by config when Run is called.
func NewFeedbackClient(config TransportConfig) *FeedbackClient {
	return &FeedbackClient{transport: NewTLSTransport(config)}
}

// Run reads the feedback stream to completion, invoking cb once per record
// as it is parsed. It returns when the service closes the connection
// (APNs always does, once its backlog is sent), on a transport error, or
// when ctx is canceled, in which case it closes the transport to unblock a
// pending Recv and returns ctx.Err().
func (f *FeedbackClient) Run(ctx context.Context, cb func(FeedbackRecord)) error {
	defer f.transport.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			f.transport.Close()
		case <-stop:
		}
	}()

	var buf []byte

	for {
		chunk, err := f.transport.Recv(4096)
		if len(chunk) == 0 {
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return err
			}
			break
		}
		buf = append(buf, chunk...)

		for {
			rec, rest := parseFeedbackRecord(buf)
			if rec == nil {
				buf = rest
				break
			}
			buf = rest
			cb(*rec)
		}
	}

	return nil
}
