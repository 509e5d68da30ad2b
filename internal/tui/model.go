package tui

import (
	"time"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r2"

	"baymap/internal/bay"
	"baymap/internal/editor"
	"baymap/internal/geom"
	"baymap/internal/overlay"
	"baymap/internal/projection"
)

const (
	defaultStyleLoadDelay = 120 * time.Millisecond
	defaultStoreTimeout   = 10 * time.Second

	// newBayMeters is the side of a rectangle created with "n".
	newBayWidthMeters  = 2.5
	newBayHeightMeters = 5.0
)

// Options configures a Model.
type Options struct {
	Service *bay.Service

	// Center and MetersPerPixel set the initial view. A zero centre frames
	// the base map, or the bays once they load.
	Center         [2]float64
	MetersPerPixel float64

	Snap         bool
	HandleRadius float64
	Theme        string

	Basemap     geom.Data
	BasemapName string

	// Events, when set, triggers a reload whenever another process
	// changes a bay.
	Events <-chan bay.Event

	// StyleLoadDelay is how long the map takes to load a style.
	StyleLoadDelay time.Duration
	StoreTimeout   time.Duration
}

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool
	showAttrs   bool

	status    string
	statusErr bool

	// Map
	vp       *projection.Viewport
	surface  *overlay.Surface
	watchdog *overlay.Watchdog
	theme    string
	basemap  geom.Data
	baseName string
	needFit  bool

	// Bays
	ed     *editor.Editor
	svc    *bay.Service
	events <-chan bay.Event
	saving bool

	styleLoadDelay time.Duration
	storeTimeout   time.Duration

	// Bay sidebar
	l list.Model

	// WKT import
	pasteMode bool
	ta        textarea.Model

	// Code entry
	codeMode bool
	ti       textinput.Model

	// Attributes table
	tbl table.Model

	// pan drag started on empty map
	panning bool
	panLast r2.Vec

	// hover state
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64
}

func New(o Options) Model {
	if o.MetersPerPixel <= 0 {
		o.MetersPerPixel = 0.25
	}
	if o.HandleRadius <= 0 {
		o.HandleRadius = 6
	}
	if _, ok := themes[o.Theme]; !ok {
		o.Theme = themeNames[0]
	}
	if o.StyleLoadDelay <= 0 {
		o.StyleLoadDelay = defaultStyleLoadDelay
	}
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = defaultStoreTimeout
	}

	m := Model{
		helpVisible:    true,
		status:         "baymap ready",
		vp:             &projection.Viewport{Center: o.Center, MetersPerPixel: o.MetersPerPixel, Width: 160, Height: 96},
		watchdog:       &overlay.Watchdog{},
		basemap:        o.Basemap,
		baseName:       o.BasemapName,
		needFit:        o.Center == [2]float64{},
		svc:            o.Service,
		events:         o.Events,
		styleLoadDelay: o.StyleLoadDelay,
		storeTimeout:   o.StoreTimeout,
	}
	m.surface = overlay.NewSurface(m.vp)
	m.ed = editor.New(editor.Options{
		Projector:    m.vp,
		Engine:       m.surface,
		Snap:         o.Snap,
		HandleRadius: o.HandleRadius,
	})
	m.theme = o.Theme

	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = true
	d.SetSpacing(0)
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Bays"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste a WKT POLYGON of a rectangle. Press Enter to import as draft; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	// code input setup
	m.ti = textinput.New()
	m.ti.Prompt = "code: "
	m.ti.CharLimit = 32
	m.ti.Width = 20
	// attributes table setup
	m.tbl = table.New(table.WithColumns(attrColumns), table.WithFocused(true))
	m.tbl.SetHeight(12)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.switchTheme(m.theme),
		loadZones(m.svc, m.storeTimeout),
		loadBays(m.svc, m.ed.ZoneID(), m.storeTimeout),
		waitEvent(m.events),
	)
}

// Editor exposes the editing state, mainly for tests.
func (m Model) Editor() *editor.Editor { return m.ed }

// Status is the current status line.
func (m Model) Status() string { return m.status }
