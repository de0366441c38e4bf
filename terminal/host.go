// Package terminal hosts the keyboard in a terminal, driven by the mouse.
package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dasdy/tapboard/gesture"
	"github.com/dasdy/tapboard/keyboard"
	"github.com/dasdy/tapboard/layout"
	"github.com/dasdy/tapboard/logging"
	"github.com/gdamore/tcell/v2"
)

var logCtx = logging.PackageCtx("terminal")

const (
	// rowCells is how many terminal rows one keyboard row takes.
	rowCells      = 2
	redrawTimeout = 100 * time.Millisecond
)

var (
	keyStyle     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	pressedStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	popupStyle   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorAqua)
	statusStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	selectStyle  = tcell.StyleDefault.Reverse(true)
)

// beeper vibrates by ringing the terminal bell.
type beeper struct {
	screen tcell.Screen
}

func (b beeper) Vibrate(_ time.Duration) {
	if err := b.screen.Beep(); err != nil {
		slog.DebugContext(logCtx, "Could not beep", "error", err)
	}
}

// pressFeedback remembers where the finger is so the key under it can be drawn pressed.
type pressFeedback struct {
	showing bool
	x, y    float64
}

func (f *pressFeedback) Show(x, y float64) {
	f.showing = true
	f.x, f.y = x, y
}

func (f *pressFeedback) Update(x, y float64) {
	f.x, f.y = x, y
}

func (f *pressFeedback) Close() {
	f.showing = false
}

type hostOptions struct {
	queue keyboard.Queue
	stats keyboard.StatsTracker
}

type Option func(*hostOptions)

// WithQueue runs editor operations on queue instead of a background executor.
func WithQueue(queue keyboard.Queue) Option {
	return func(o *hostOptions) {
		o.queue = queue
	}
}

func WithStats(stats keyboard.StatsTracker) Option {
	return func(o *hostOptions) {
		o.stats = stats
	}
}

// Host owns the screen and the keyboard. HandleEvent, Draw and Run must be called from one
// goroutine.
type Host struct {
	screen    tcell.Screen
	keyboard  *keyboard.Keyboard
	scheduler *gesture.LoopScheduler
	executor  *keyboard.Executor
	buffer    *Buffer
	feedback  *pressFeedback
	mouse     MouseMapper
}

func NewHost(screen tcell.Screen, cfg keyboard.Config, keyboards layout.Keyboards, opts ...Option) (*Host, error) {
	var options hostOptions
	for _, opt := range opts {
		opt(&options)
	}

	h := &Host{
		screen:    screen,
		scheduler: gesture.NewLoopScheduler(),
		buffer:    NewBuffer(),
		feedback:  &pressFeedback{},
	}

	if options.queue == nil {
		h.executor = keyboard.NewExecutor()
		options.queue = h.executor
	}

	k, err := keyboard.New(cfg, keyboards, h.scheduler, options.queue,
		keyboard.WithEditor(h.buffer),
		keyboard.WithVibrator(beeper{screen: screen}),
		keyboard.WithFeedback(h.feedback),
		keyboard.WithStats(options.stats),
	)
	if err != nil {
		h.Close()

		return nil, fmt.Errorf("could not create keyboard: %w", err)
	}

	// The buffer has no editor action of its own, a down swipe ends the line
	k.SetNoEnterAction(true)

	h.keyboard = k
	h.resize()

	return h, nil
}

func (h *Host) Keyboard() *keyboard.Keyboard {
	return h.keyboard
}

func (h *Host) Buffer() *Buffer {
	return h.buffer
}

func (h *Host) Scheduler() *gesture.LoopScheduler {
	return h.scheduler
}

// Close stops the scheduler and waits for pending editor operations.
func (h *Host) Close() {
	h.scheduler.Close()

	if h.executor != nil {
		h.executor.Close()
	}
}

func (h *Host) resize() {
	width, height := h.screen.Size()
	rows := len(h.keyboard.Geometry().Rows())

	kbHeight := min(rows*rowCells, height)
	h.mouse.Top = height - kbHeight

	h.keyboard.SetSize(float64(width), float64(kbHeight))

	slog.DebugContext(logCtx, "Resized", "width", width, "height", height, "top", h.mouse.Top)
}

// HandleEvent processes one terminal event. It returns false when the user asked to quit.
func (h *Host) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyCtrlA:
			h.buffer.SelectAll()
		default:
		}
	case *tcell.EventMouse:
		touch, ok := h.mouse.Map(ev, h.scheduler.Now())
		if ok {
			h.keyboard.HandleTouch(touch)
		}
	case *tcell.EventResize:
		h.screen.Sync()
		h.resize()
	}

	return true
}

// Run shows the keyboard until ctx is done or the user quits.
func (h *Host) Run(ctx context.Context) {
	h.screen.EnableMouse(tcell.MouseDragEvents)
	defer h.screen.DisableMouse()

	events := make(chan tcell.Event)
	done := make(chan struct{})

	defer close(done)

	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}

			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	// Editor operations finish on the executor, so redraw now and then to show them
	ticker := time.NewTicker(redrawTimeout)
	defer ticker.Stop()

	h.Draw()

	for {
		select {
		case ev := <-events:
			if !h.HandleEvent(ev) {
				return
			}
		case fn := <-h.scheduler.C():
			fn()
		case <-ticker.C:
		case <-ctx.Done():
			return
		}

		h.Draw()
	}
}

func (h *Host) Draw() {
	h.screen.Clear()

	width, _ := h.screen.Size()

	h.drawText(width)
	h.drawStatus()
	h.drawKeys()
	h.drawPopup()

	h.screen.Show()
}

func (h *Host) drawText(width int) {
	lines := h.mouse.Top - 1
	if lines <= 0 || width <= 0 {
		return
	}

	text, selected := h.buffer.Snapshot()
	runes := []rune(text)
	selectedFrom := len(runes) - selected

	type cell struct {
		char     rune
		selected bool
	}

	var (
		rows    [][]cell
		current []cell
	)

	for i, r := range runes {
		if r == '\n' {
			rows = append(rows, current)
			current = nil

			continue
		}

		current = append(current, cell{char: r, selected: i >= selectedFrom})
		if len(current) == width {
			rows = append(rows, current)
			current = nil
		}
	}

	rows = append(rows, append(current, cell{char: '_'}))

	rows = rows[max(0, len(rows)-lines):]

	for y, row := range rows {
		for x, c := range row {
			style := tcell.StyleDefault
			if c.selected {
				style = selectStyle
			}

			h.screen.SetContent(x, y, c.char, nil, style)
		}
	}
}

func (h *Host) drawStatus() {
	if h.mouse.Top < 1 {
		return
	}

	engine := h.keyboard.Engine()
	status := fmt.Sprintf("%s  switch: %s  esc quits, ctrl-a selects all", engine.Layout(), engine.SwitchKey())

	h.drawString(0, h.mouse.Top-1, status, statusStyle)
}

func (h *Host) drawKeys() {
	geometry := h.keyboard.Geometry()
	switchKey := h.keyboard.Engine().SwitchKey()

	pressed := layout.NoKey
	if h.feedback.showing && !h.keyboard.Popup().IsShowing() {
		pressed = geometry.Nearest(h.feedback.x, h.feedback.y)
	}

	for _, key := range geometry.Keys() {
		style := keyStyle
		if key.Char == pressed {
			style = pressedStyle
		}

		h.drawCentered(key.X, float64(h.mouse.Top)+key.Y, layout.Label(key.Char, switchKey), style)
	}
}

func (h *Host) drawPopup() {
	popup := h.keyboard.Popup()
	if !popup.IsShowing() {
		return
	}

	x0, y0 := popup.Origin()

	for _, key := range popup.Geometry().Keys() {
		h.drawCentered(x0+key.X, float64(h.mouse.Top)+y0+key.Y, string(key.Char), popupStyle)
	}
}

// drawCentered writes label with its middle on the cell containing (x, y).
func (h *Host) drawCentered(x, y float64, label string, style tcell.Style) {
	start := int(math.Floor(x)) - utf8.RuneCountInString(label)/2
	h.drawString(start, int(math.Floor(y)), label, style)
}

func (h *Host) drawString(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(strings.TrimRight(s, "\n")) {
		h.screen.SetContent(x+i, y, r, nil, style)
	}
}
