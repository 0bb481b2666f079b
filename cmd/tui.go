package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rivo/tview"
	"github.com/sangnt1552314/ytscout/internal/models"
	"github.com/sangnt1552314/ytscout/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type searcher interface {
	FindChannels(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error)
}

type App struct {
	app         *tview.Application
	form        *tview.Form
	channelList *tview.Table
	statusBox   *tview.TextView
	searcher    searcher
	logger      *zap.Logger
	ctx         context.Context
	limit       int
	exportDir   string

	// only touched from the UI goroutine
	records   []models.ChannelRecord
	searching bool
}

func newTUICmd(env *runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive terminal UI (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), env)
		},
	}
}

func runTUI(ctx context.Context, env *runtimeEnv) error {
	finder, err := env.newFinder(ctx)
	if err != nil {
		return err
	}
	app := NewApp(ctx, finder, env.logger.Named("tui"), env.cfg.Limit, env.cfg.ExportDir)

	go func() {
		<-ctx.Done()
		app.app.Stop()
	}()

	return app.Run()
}

func NewApp(ctx context.Context, s searcher, logger *zap.Logger, limit int, exportDir string) *App {
	app := &App{
		app:         tview.NewApplication(),
		form:        tview.NewForm(),
		channelList: tview.NewTable(),
		statusBox:   tview.NewTextView(),
		searcher:    s,
		logger:      logger,
		ctx:         ctx,
		limit:       limit,
		exportDir:   exportDir,
	}
	app.setupForm()
	app.setChannelTableHeader()
	return app
}

func (app *App) setupForm() {
	app.form.AddInputField("Search query", "musicians strategy", 40, nil, nil)
	app.form.AddInputField("Minimum Subscribers", "1000", 10, acceptSubscriberCount, nil)
	app.form.AddInputField("Maximum Subscribers", "10000", 10, acceptSubscriberCount, nil)
	app.form.AddButton("Search", app.submitSearch)
	app.form.AddButton("Export CSV", app.exportCSV)
	app.form.AddButton("Quit", app.app.Stop)
	app.form.SetBorder(true).SetTitle("Search").SetTitleAlign(tview.AlignLeft)
	app.form.SetFieldBackgroundColor(tcell.ColorNone)
	app.form.SetFieldTextColor(tcell.ColorWhite)
}

// acceptSubscriberCount limits the numeric inputs to 0..1,000,000.
func acceptSubscriberCount(text string, lastChar rune) bool {
	if text == "" {
		return true
	}
	n, err := strconv.ParseUint(text, 10, 64)
	return err == nil && n <= models.MaxSubscribers
}

func (app *App) setChannelTableHeader() {
	headers := []struct {
		title    string
		maxWidth int
	}{
		{"Channel Title", 30},
		{"Subscribers", 11},
		{"Videos", 8},
		{"Latest Video", 19},
		{"Channel Link", 0},
	}
	for col, h := range headers {
		app.channelList.SetCell(0, col, tview.NewTableCell(h.title).
			SetMaxWidth(h.maxWidth).
			SetSelectable(false).
			SetTextColor(tcell.ColorYellow).
			SetAttributes(tcell.AttrBold))
	}

	// Fix header row
	app.channelList.SetFixed(1, 0)
}

func (app *App) formRequest() (models.SearchRequest, error) {
	query := app.form.GetFormItemByLabel("Search query").(*tview.InputField).GetText()
	minText := app.form.GetFormItemByLabel("Minimum Subscribers").(*tview.InputField).GetText()
	maxText := app.form.GetFormItemByLabel("Maximum Subscribers").(*tview.InputField).GetText()

	minSubs, err := parseFormCount(minText)
	if err != nil {
		return models.SearchRequest{}, goerr.Wrap(err, "invalid minimum subscribers")
	}
	maxSubs, err := parseFormCount(maxText)
	if err != nil {
		return models.SearchRequest{}, goerr.Wrap(err, "invalid maximum subscribers")
	}

	req := models.SearchRequest{Query: query, MinSubs: minSubs, MaxSubs: maxSubs, Limit: app.limit}
	if err := req.ValidateInput(); err != nil {
		return models.SearchRequest{}, err
	}
	return req, nil
}

func parseFormCount(text string) (uint64, error) {
	if text == "" {
		return 0, nil
	}
	return strconv.ParseUint(text, 10, 64)
}

func (app *App) submitSearch() {
	if app.searching {
		return
	}
	req, err := app.formRequest()
	if err != nil {
		app.setStatus(tcell.ColorRed, "Error: "+err.Error())
		return
	}

	app.searching = true
	app.setStatus(tcell.ColorYellow, "Searching...")

	// Run the search in a goroutine, the UI keeps drawing meanwhile
	go func() {
		result, err := app.searcher.FindChannels(app.ctx, req)

		// Use QueueUpdateDraw to safely update UI from goroutine
		app.app.QueueUpdateDraw(func() {
			app.searching = false
			if err != nil {
				app.logger.Error("search failed", zap.Error(err))
				app.setStatus(tcell.ColorRed, "Error: "+err.Error())
				return
			}
			app.showResult(result)
			app.app.SetFocus(app.channelList)
		})
	}()
}

func (app *App) showResult(result *models.SearchResult) {
	app.records = result.Records
	app.channelList.Clear()
	app.setChannelTableHeader()

	for i, r := range result.Records {
		titleCell := tview.NewTableCell(r.Title).SetReference(r.ChannelURL)
		app.channelList.SetCell(i+1, 0, titleCell)
		app.channelList.SetCell(i+1, 1, tview.NewTableCell(strconv.FormatUint(r.SubscriberCount, 10)).SetAlign(tview.AlignRight))
		app.channelList.SetCell(i+1, 2, tview.NewTableCell(strconv.FormatUint(r.VideoCount, 10)).SetAlign(tview.AlignRight))
		app.channelList.SetCell(i+1, 3, tview.NewTableCell(formatLatest(r)))
		app.channelList.SetCell(i+1, 4, tview.NewTableCell(r.ChannelURL))
	}

	app.setStatus(tcell.ColorGreen, statusLine(result))
}

func formatLatest(r models.ChannelRecord) string {
	if r.LatestUpload == nil {
		return "-"
	}
	return r.LatestUpload.UTC().Format(services.LatestVideoLayout)
}

// statusLine renders the match count followed by the skip reasons.
func statusLine(result *models.SearchResult) string {
	line := fmt.Sprintf("Found %d channels!", len(result.Records))

	counts := result.SkipCounts()
	if len(counts) == 0 {
		return line
	}
	reasons := make([]string, 0, len(counts))
	for reason, n := range counts {
		reasons = append(reasons, fmt.Sprintf("%s=%d", reason, n))
	}
	sort.Strings(reasons)
	return line + " Skipped: " + strings.Join(reasons, ", ")
}

func (app *App) exportCSV() {
	if len(app.records) == 0 {
		app.setStatus(tcell.ColorYellow, "Nothing to export, run a search first")
		return
	}
	path, err := services.ExportCSVFile(app.exportDir, app.records)
	if err != nil {
		app.logger.Error("export failed", zap.Error(err))
		app.setStatus(tcell.ColorRed, "Error: "+err.Error())
		return
	}
	app.logger.Info("exported csv", zap.String("path", path), zap.Int("records", len(app.records)))
	app.setStatus(tcell.ColorGreen, fmt.Sprintf("📥 Exported %d channels to %s", len(app.records), path))
}

func (app *App) setStatus(color tcell.Color, text string) {
	app.statusBox.SetTextColor(color)
	app.statusBox.SetText(text)
}

func (app *App) Run() error {
	// q and Ctrl+C quit unless the user is typing into the form
	app.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			app.app.Stop()
			return nil
		}
		if event.Rune() == 'q' && !app.form.HasFocus() {
			app.app.Stop()
			return nil
		}
		if event.Key() == tcell.KeyTab && app.channelList.HasFocus() {
			app.app.SetFocus(app.form)
			return nil
		}
		return event
	})

	// Set up table selection handler
	app.channelList.SetSelectable(true, false) // Enable row selection
	app.channelList.SetSelectedFunc(func(row, column int) {
		if row == 0 { // Ignore header row
			return
		}
		url, ok := app.channelList.GetCell(row, 0).GetReference().(string)
		if !ok {
			return
		}
		if err := services.OpenURL(url); err != nil {
			app.logger.Warn("failed to open channel", zap.String("url", url), zap.Error(err))
			app.setStatus(tcell.ColorYellow, url)
		}
	})

	// Container - Results box
	resultsBox := tview.NewFlex().SetDirection(tview.FlexRow)
	resultsBox.SetBorder(true)
	resultsBox.SetTitle("Channels")
	resultsBox.SetTitleAlign(tview.AlignLeft)
	resultsBox.AddItem(app.channelList, 0, 1, false)

	app.statusBox.SetBorder(true)
	app.statusBox.SetTitle("Status")
	app.statusBox.SetTitleAlign(tview.AlignLeft)
	app.setStatus(tcell.ColorYellow, "Enter a query and press Search")

	mainBox := tview.NewFlex().SetDirection(tview.FlexRow)
	mainBox.SetFullScreen(true)
	mainBox.AddItem(app.form, 11, 0, true)
	mainBox.AddItem(resultsBox, 0, 1, false)
	mainBox.AddItem(app.statusBox, 3, 0, false)

	return app.app.
		SetRoot(mainBox, true).
		EnableMouse(true).
		Run()
}
