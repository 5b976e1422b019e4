package export

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-co-op/gocron"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/founderdesk/daylog/internal/app"
	"github.com/founderdesk/daylog/internal/store"
)

// GSheetExporter pushes the lifetime scoreboard into a shared spreadsheet on
// a cron schedule, one exporter per configured sheet.
type GSheetExporter struct {
	config        *app.Config
	store         store.SubmissionStore
	scheduler     *gocron.Scheduler
	sheetsService *sheets.Service
}

func NewGSheetExporter(config *app.Config, store store.SubmissionStore) (*gocron.Scheduler, error) {
	ctx := context.Background()
	scheduler := gocron.NewScheduler(time.UTC)

	for _, cfg := range config.GSheet {
		svc, err := sheets.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath))
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets service: %w", err)
		}

		exporter := &GSheetExporter{
			config:        config,
			store:         store,
			scheduler:     scheduler,
			sheetsService: svc,
		}

		sheetCfg := cfg
		_, err = scheduler.Cron(cfg.Schedule).Do(func() {
			if err := exporter.Export(&sheetCfg); err != nil {
				logger.Error.Printf("Export failed: %v", err)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to schedule export: %w", err)
		}
	}

	scheduler.StartAsync()
	return scheduler, nil
}

func (e *GSheetExporter) Export(cfg *app.GSheetConfig) error {
	rows, err := e.store.FetchLifetimeBoard()
	if err != nil {
		return fmt.Errorf("failed to fetch board: %w", err)
	}

	values := make([][]interface{}, 0, len(rows))
	for i, row := range rows {
		values = append(values, []interface{}{
			i + 1,
			row.UserID,
			row.Role,
			row.TasksApproved,
			row.Total,
		})
	}

	updateRange := fmt.Sprintf("%s!%s", cfg.SheetName, cfg.BoardRange)
	_, err = e.sheetsService.Spreadsheets.Values.Update(cfg.SheetID, updateRange,
		&sheets.ValueRange{Values: values}).ValueInputOption("RAW").Do()
	if err != nil {
		return fmt.Errorf("failed to update board range: %w", err)
	}

	timestamp := fmt.Sprintf("UPD: %s", time.Now().Format("2 January 15:04"))
	if len(e.config.EmojiVariants) > 0 {
		emoji := e.config.EmojiVariants[rand.Intn(len(e.config.EmojiVariants))]
		timestamp = fmt.Sprintf("%s %s", timestamp, emoji)
	}

	updateRange = fmt.Sprintf("%s!%s", cfg.SheetName, cfg.TimestampRange)
	_, err = e.sheetsService.Spreadsheets.Values.Update(cfg.SheetID, updateRange,
		&sheets.ValueRange{Values: [][]interface{}{{timestamp}}}).ValueInputOption("RAW").Do()

	return err
}
