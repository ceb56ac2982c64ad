package protocol

// LEDFrame is the host-provided LED state delivered once per led_report
// command. Brightness is 0..63 (clamp the brightness ratio to 1.0 at the
// consumer); LEDBRG is a BRG-ordered triplet stream whose length is a
// multiple of 3.
type LEDFrame struct {
	Brightness byte
	LEDBRG     []byte
}

// EventSink receives the upward-facing events the dispatcher raises while
// processing host commands. Implementations must not block: events fire
// synchronously from within DataReceived.
//
// A single method per event (rather than a name-keyed callback table) is
// used deliberately — see the design notes on avoiding runtime-string-keyed
// dispatch.
type EventSink interface {
	ConnectionMade()
	ConnectionLost(err error)
	LEDFrameReceived(frame LEDFrame)
	ReportStateChanged(enabled bool)
	ReportOneShotRequested()
	Reset()
}

// NoopEventSink implements EventSink with no-op methods, useful to embed in
// partial UI collaborators that only care about a subset of events.
type NoopEventSink struct{}

func (NoopEventSink) ConnectionMade()                  {}
func (NoopEventSink) ConnectionLost(err error)          {}
func (NoopEventSink) LEDFrameReceived(frame LEDFrame)   {}
func (NoopEventSink) ReportStateChanged(enabled bool)   {}
func (NoopEventSink) ReportOneShotRequested()           {}
func (NoopEventSink) Reset()                            {}

// CallbackSink is an EventSink built from individually-registered
// callbacks, giving UI collaborators the `on(event, callback)` registration
// ergonomics of the original protocol without falling back to a
// string-keyed dispatch table. Unset callbacks are no-ops. Registrations
// must happen-before the connection is established, or the caller must
// otherwise synchronize them; CallbackSink itself performs no locking (see
// §5's "Shared resources").
type CallbackSink struct {
	OnConnectionMade        func()
	OnConnectionLost        func(err error)
	OnLED                   func(frame LEDFrame)
	OnReportStateChange     func(enabled bool)
	OnReportOneShot         func()
	OnReset                 func()
}

func (c *CallbackSink) ConnectionMade() {
	if c.OnConnectionMade != nil {
		c.OnConnectionMade()
	}
}

func (c *CallbackSink) ConnectionLost(err error) {
	if c.OnConnectionLost != nil {
		c.OnConnectionLost(err)
	}
}

func (c *CallbackSink) LEDFrameReceived(frame LEDFrame) {
	if c.OnLED != nil {
		c.OnLED(frame)
	}
}

func (c *CallbackSink) ReportStateChanged(enabled bool) {
	if c.OnReportStateChange != nil {
		c.OnReportStateChange(enabled)
	}
}

func (c *CallbackSink) ReportOneShotRequested() {
	if c.OnReportOneShot != nil {
		c.OnReportOneShot()
	}
}

func (c *CallbackSink) Reset() {
	if c.OnReset != nil {
		c.OnReset()
	}
}
