package controller

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/moffa90/go-lcr4500/protocol"
	"periph.io/x/conn/v3/physic"
)

func TestFPSToPeriod(t *testing.T) {
	tests := []struct {
		fps  uint
		want uint32
	}{
		{fps: 222, want: 4504},
		{fps: 60, want: 16666},
		{fps: 1, want: 1000000},
		{fps: 3, want: 333333},
		{fps: 0, want: 0},
	}

	for _, tt := range tests {
		if got := FPSToPeriod(tt.fps); got != tt.want {
			t.Errorf("FPSToPeriod(%d) = %d, want %d", tt.fps, got, tt.want)
		}
	}
}

func TestRateToPeriod(t *testing.T) {
	tests := []struct {
		name    string
		rate    physic.Frequency
		want    uint32
		wantErr bool
	}{
		{name: "222 Hz", rate: 222 * physic.Hertz, want: 4504},
		{name: "60 Hz", rate: 60 * physic.Hertz, want: 16666},
		{name: "fractional", rate: 2500 * physic.MilliHertz, want: 400000},
		{name: "1 MHz", rate: physic.MegaHertz, want: 1},
		{name: "zero", rate: 0, wantErr: true},
		{name: "negative", rate: -physic.Hertz, wantErr: true},
		{name: "too fast", rate: 2 * physic.MegaHertz, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RateToPeriod(tt.rate)
			if tt.wantErr {
				if !protocol.IsEncodingError(err) {
					t.Fatalf("error = %v, want encoding error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("RateToPeriod(%s) = %d, want %d", tt.rate, got, tt.want)
			}
		})
	}
}

type wantCommand struct {
	sel2    byte
	payload []byte
}

func checkSent(t *testing.T, ch *MockChannel, want []wantCommand) {
	t.Helper()

	got := ch.sent(t)
	if len(got) != len(want) {
		t.Fatalf("sent %d commands, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].sel1 != 0x1A && got[i].sel1 != protocol.SelPowerControl1 {
			t.Errorf("command %d: selector1 = 0x%02X", i, got[i].sel1)
		}
		if got[i].sel2 != want[i].sel2 {
			t.Errorf("command %d: selector2 = 0x%02X, want 0x%02X", i, got[i].sel2, want[i].sel2)
		}
		if !bytes.Equal(got[i].payload, want[i].payload) {
			t.Errorf("command %d (0x%02X): payload = % X, want % X", i, want[i].sel2, got[i].payload, want[i].payload)
		}
	}
}

func TestPatternModeDefaults(t *testing.T) {
	ch := NewMockChannel()
	c := newTestController(ch)

	if err := c.PatternMode(context.Background(), DefaultPatternModeOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkSent(t, ch, []wantCommand{
		{0x24, []byte{0x00}},
		{0x1B, []byte{0x01}},
		{0x22, []byte{0x00}},
		{0x31, []byte{0x02, 0x01, 0x02, 0x00}},
		{0x23, []byte{0x00}},
		{0x29, []byte{0x98, 0x11, 0x00, 0x00, 0x98, 0x11, 0x00, 0x00}},
		{0x33, []byte{0x02}},
		{0x32, []byte{0x00}},
		{0x34, []byte{0x00, 0x77, 0x00}},
		{0x32, []byte{0x01}},
		{0x34, []byte{0x07, 0x77, 0x00}},
		{0x32, []byte{0x02}},
		{0x34, []byte{0x0B, 0x77, 0x00}},
		{0x33, []byte{0x00}},
		{0x1A, []byte{0x00}},
		{0x24, []byte{0x02}},
		{0x24, []byte{0x02}},
	})

	if err := c.SetDisplayMode(context.Background(), protocol.DisplayVideo); err == nil {
		t.Error("parameters should be locked while the sequence runs")
	}
}

func TestPatternModeSlotTriggers(t *testing.T) {
	tests := []struct {
		name  string
		first protocol.TriggerType
		want  []byte
	}{
		{"default", DefaultPatternModeOptions().FirstTrigger, []byte{0, 3, 3}},
		{"external positive", protocol.TriggerExternalPositive, []byte{1, 3, 3}},
		{"external negative", protocol.TriggerExternalNegative, []byte{2, 3, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := NewMockChannel()
			c := newTestController(ch)

			opts := DefaultPatternModeOptions()
			opts.FirstTrigger = tt.first
			if err := c.PatternMode(context.Background(), opts); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var triggers []byte
			for _, cmd := range ch.sent(t) {
				if cmd.sel2 == protocol.SelPatternLUT2 {
					triggers = append(triggers, cmd.payload[0]&0x03)
				}
			}
			if !bytes.Equal(triggers, tt.want) {
				t.Errorf("slot triggers = %v, want %v", triggers, tt.want)
			}
		})
	}
}

func TestPatternModeOptions(t *testing.T) {
	ch := NewMockChannel()
	c := newTestController(ch)

	opts := DefaultPatternModeOptions()
	opts.InputSource = protocol.SourceFlash
	opts.NumPatterns = 2
	opts.BitDepth = 1
	opts.LEDs = protocol.LEDGreen
	opts.Period = 10000
	opts.FirstTrigger = protocol.TriggerInternal

	if err := c.PatternMode(context.Background(), opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkSent(t, ch, []wantCommand{
		{0x24, []byte{0x00}},
		{0x1B, []byte{0x01}},
		{0x22, []byte{0x03}},
		{0x31, []byte{0x01, 0x01, 0x01, 0x00}},
		{0x23, []byte{0x00}},
		{0x29, []byte{0x10, 0x27, 0x00, 0x00, 0x10, 0x27, 0x00, 0x00}},
		{0x33, []byte{0x02}},
		{0x32, []byte{0x00}},
		{0x34, []byte{0x1C, 0x21, 0x00}},
		{0x32, []byte{0x01}},
		{0x34, []byte{0x3F, 0x21, 0x00}},
		{0x33, []byte{0x00}},
		{0x1A, []byte{0x00}},
		{0x24, []byte{0x02}},
		{0x24, []byte{0x02}},
	})
}

func TestPatternModeInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		modify func(o *PatternModeOptions)
	}{
		{"bit depth 3", func(o *PatternModeOptions) { o.BitDepth = 3 }},
		{"bit depth 0", func(o *PatternModeOptions) { o.BitDepth = 0 }},
		{"no patterns", func(o *PatternModeOptions) { o.NumPatterns = 0 }},
		{"too many patterns", func(o *PatternModeOptions) { o.NumPatterns = 4 }},
		{"zero rate", func(o *PatternModeOptions) { o.Rate = 0 }},
		{"input source", func(o *PatternModeOptions) { o.InputSource = 2 }},
		{"trigger mode", func(o *PatternModeOptions) { o.Trigger = 1 }},
		{"first trigger", func(o *PatternModeOptions) { o.FirstTrigger = 4 }},
		{"led mask", func(o *PatternModeOptions) { o.LEDs = 8 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := NewMockChannel()
			c := newTestController(ch)

			opts := DefaultPatternModeOptions()
			tt.modify(&opts)

			if err := c.PatternMode(context.Background(), opts); !protocol.IsEncodingError(err) {
				t.Fatalf("error = %v, want encoding error", err)
			}
			if len(ch.writes) != 0 {
				t.Error("nothing should be sent for invalid options")
			}
		})
	}
}

func TestPatternModeProgress(t *testing.T) {
	var reports []Progress
	ch := NewMockChannel()
	c := newTestController(ch, WithProgressCallback(func(p Progress) {
		reports = append(reports, p)
	}))

	if err := c.PatternMode(context.Background(), DefaultPatternModeOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 7 setup steps, 3 LUT slots, close, validate, two starts, complete
	if len(reports) != 15 {
		t.Fatalf("got %d progress reports, want 15", len(reports))
	}

	counts := map[string]int{}
	for i, p := range reports {
		counts[p.Step]++
		if p.Total != 14 {
			t.Errorf("report %d: Total = %d, want 14", i, p.Total)
		}
		if i > 0 && p.Percentage < reports[i-1].Percentage {
			t.Errorf("report %d: percentage decreased", i)
		}
	}
	if counts[StepLUTEntry] != 3 {
		t.Errorf("%d lut-entry reports, want 3", counts[StepLUTEntry])
	}
	if counts[StepStart] != 2 {
		t.Errorf("%d start reports, want 2", counts[StepStart])
	}

	last := reports[len(reports)-1]
	if last.Step != StepComplete || last.Percentage != 100 {
		t.Errorf("last report = %+v, want complete at 100%%", last)
	}
}

func TestPatternModeValidationFailure(t *testing.T) {
	ch := NewMockChannel()
	for i := 0; i < 14; i++ {
		ch.AddReply(okReply())
	}
	ch.AddReply(replyWith(protocol.ReplyValidationOffset, 0x01))

	logger := &MockLogger{}
	c := newTestController(ch, WithLogger(logger))

	if err := c.PatternMode(context.Background(), DefaultPatternModeOptions()); err != nil {
		t.Fatalf("validation problems should not abort the procedure: %v", err)
	}
	if !logger.hasError("pattern lut validation failed") {
		t.Errorf("validation failure should be logged, got %v", logger.errorMsgs)
	}
	if got := len(ch.sent(t)); got != 17 {
		t.Errorf("sent %d commands, want 17", got)
	}
}

func TestPatternModeMissingReplies(t *testing.T) {
	t.Run("tolerated", func(t *testing.T) {
		ch := NewMockChannel()
		ch.SetReadError(errors.New("timeout"))
		c := newTestController(ch)

		if err := c.PatternMode(context.Background(), DefaultPatternModeOptions()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := len(ch.sent(t)); got != 17 {
			t.Errorf("sent %d commands, want 17", got)
		}
	})

	t.Run("strict", func(t *testing.T) {
		ch := NewMockChannel()
		ch.SetReadError(errors.New("timeout"))
		c := newTestController(ch, WithStrictReplies(true))

		err := c.PatternMode(context.Background(), DefaultPatternModeOptions())
		if !IsRecoverable(err) {
			t.Fatalf("error = %v, want recoverable TransportError", err)
		}
		if got := len(ch.sent(t)); got != 1 {
			t.Errorf("sent %d commands, want 1", got)
		}
	})
}

func TestPatternModeWriteFailure(t *testing.T) {
	ch := NewMockChannel()
	ch.SetWriteError(errors.New("device gone"), 3)
	c := newTestController(ch)

	err := c.PatternMode(context.Background(), DefaultPatternModeOptions())
	var terr *TransportError
	if !errors.As(err, &terr) || terr.Op != "write" {
		t.Fatalf("error = %v, want write TransportError", err)
	}
	if len(ch.writes) != 3 {
		t.Errorf("wrote %d packets, want 3", len(ch.writes))
	}

	if _, err := c.Status(context.Background()); !errors.Is(err, ErrChannelFailed) {
		t.Errorf("error = %v, want ErrChannelFailed", err)
	}
}

func TestPatternModeCancelled(t *testing.T) {
	ch := NewMockChannel()
	ctx, cancel := context.WithCancel(context.Background())

	c := newTestController(ch, WithProgressCallback(func(p Progress) {
		if p.Step == StepOpenMailbox {
			cancel()
		}
	}))

	err := c.PatternMode(ctx, DefaultPatternModeOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if got := len(ch.sent(t)); got != 7 {
		t.Errorf("sent %d commands, want 7", got)
	}
}

func TestVideoMode(t *testing.T) {
	ch := NewMockChannel()
	c := newTestController(ch)
	ctx := context.Background()

	if err := c.PatternMode(ctx, DefaultPatternModeOptions()); err != nil {
		t.Fatalf("PatternMode: %v", err)
	}
	ch.writes = nil

	if err := c.VideoMode(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkSent(t, ch, []wantCommand{
		{0x24, []byte{0x00}},
		{0x1B, []byte{0x00}},
	})
}

func TestPowerProcedures(t *testing.T) {
	ctx := context.Background()

	t.Run("power down", func(t *testing.T) {
		ch := NewMockChannel()
		if err := newTestController(ch).PowerDown(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		checkSent(t, ch, []wantCommand{
			{0x24, []byte{0x00}},
			{0x00, []byte{0x01}},
		})
	})

	t.Run("power up", func(t *testing.T) {
		ch := NewMockChannel()
		if err := newTestController(ch).PowerUp(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		checkSent(t, ch, []wantCommand{
			{0x00, []byte{0x00}},
		})
	})
}

func TestSetGamma(t *testing.T) {
	ch := NewMockChannel()
	ch.AddReply(okReply())
	ch.AddReply(replyWith(protocol.ReplyMainStatusOffset, 0x08))
	c := newTestController(ch)

	status, err := c.SetGamma(context.Background(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.GammaEnabled {
		t.Errorf("status = %+v, want gamma enabled", status)
	}
	checkSent(t, ch, []wantCommand{
		{0x0E, []byte{0x80}},
		{0x0C, []byte{}},
	})
}

func TestStatus(t *testing.T) {
	ch := NewMockChannel()
	ch.AddReply(replyWith(protocol.ReplyMainStatusOffset, 0x01))
	c := newTestController(ch)

	status, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != (protocol.MainStatus{Parked: true}) {
		t.Errorf("status = %+v, want parked", status)
	}
}
