// logbookctl is a terminal front end for the backup logbook API: it lists,
// searches, creates, edits, deletes, and exports records, and can follow the
// server's realtime change stream.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/coder/websocket"
	"github.com/gosuri/uitable"

	"github.com/wicaksana/logbook/internal/client"
	"github.com/wicaksana/logbook/internal/export"
	"github.com/wicaksana/logbook/internal/logbook"
	"github.com/wicaksana/logbook/internal/model"
	"github.com/wicaksana/logbook/internal/month"
	"github.com/wicaksana/logbook/internal/realtime"
)

const defaultAPIURL = "http://localhost:5000"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: logbookctl <command> [flags]

Commands:
  list      list records (-search TERM)
  add       add a record (-date -time -number -performer)
  edit      edit a record (-id plus any fields to change)
  delete    delete a record (-id, -yes to skip confirmation)
  export    export visible records to xlsx (-o FILE, -search TERM)
  watch     follow realtime record changes

The API base URL comes from LOGBOOK_API_URL (default %s).
`, defaultAPIURL)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	apiURL := os.Getenv("LOGBOOK_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	ctl := logbook.New(client.New(apiURL), logbook.NotifierFunc(printNotification))
	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "list":
		err = runList(ctx, ctl, os.Args[2:])
	case "add":
		err = runAdd(ctx, ctl, os.Args[2:])
	case "edit":
		err = runEdit(ctx, ctl, os.Args[2:])
	case "delete":
		err = runDelete(ctx, ctl, os.Args[2:])
	case "export":
		err = runExport(ctx, ctl, os.Args[2:])
	case "watch":
		err = runWatch(ctx, apiURL)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// printNotification is the CLI's toast surface.
func printNotification(n logbook.Notification) {
	prefix := "OK"
	switch n.Level {
	case logbook.LevelError:
		prefix = "ERROR"
	case logbook.LevelWarning:
		prefix = "WARN"
	}
	fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", prefix, n.Title, n.Message)
}

func runList(ctx context.Context, ctl *logbook.Controller, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	search := fs.String("search", "", "filter by performer, backup number, or date")
	fs.Parse(args)

	if err := ctl.Load(ctx); err != nil {
		return err
	}
	ctl.SetSearchTerm(*search)
	renderTable(ctl.Visible(), *search)
	return nil
}

func renderTable(records []model.BackupRecord, searchTerm string) {
	if len(records) == 0 {
		if searchTerm != "" {
			fmt.Println("Tidak ada data yang sesuai dengan pencarian")
		} else {
			fmt.Println("Belum ada data backup. Silakan tambahkan data.")
		}
		return
	}

	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("BULAN", "TANGGAL", "JAM BACKUP", "BACKUP KE", "PELAKSANA", "ID")
	for _, r := range records {
		table.AddRow(r.Month, month.FormatShortDate(r.Date), r.Time, r.BackupNumber, r.Performer, r.ID)
	}
	fmt.Println(table)
}

func runAdd(ctx context.Context, ctl *logbook.Controller, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	date := fs.String("date", "", "backup date (YYYY-MM-DD)")
	timeOfDay := fs.String("time", "", "time of day, e.g. 14:30")
	number := fs.String("number", "", "backup sequence label")
	performer := fs.String("performer", "", "who ran the backup")
	fs.Parse(args)

	in := model.RecordInput{Date: *date, Time: *timeOfDay, BackupNumber: *number, Performer: *performer}
	if err := validateInput(in); err != nil {
		return err
	}
	return ctl.Submit(ctx, in)
}

func runEdit(ctx context.Context, ctl *logbook.Controller, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	id := fs.String("id", "", "record id")
	date := fs.String("date", "", "backup date (YYYY-MM-DD)")
	timeOfDay := fs.String("time", "", "time of day")
	number := fs.String("number", "", "backup sequence label")
	performer := fs.String("performer", "", "who ran the backup")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("-id is required")
	}

	if err := ctl.Load(ctx); err != nil {
		return err
	}
	if !ctl.BeginEdit(*id) {
		return fmt.Errorf("record %s not found", *id)
	}

	// Unset flags keep the record's current values, like a pre-populated form.
	current := ctl.Editing()
	in := model.RecordInput{
		Date:         firstNonEmpty(*date, current.Date),
		Time:         firstNonEmpty(*timeOfDay, current.Time),
		BackupNumber: firstNonEmpty(*number, current.BackupNumber),
		Performer:    firstNonEmpty(*performer, current.Performer),
	}
	return ctl.Submit(ctx, in)
}

func runDelete(ctx context.Context, ctl *logbook.Controller, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "record id")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("-id is required")
	}

	ctl.RequestDelete(*id)

	if !*yes {
		fmt.Print("Hapus catatan backup ini? (y/N): ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			ctl.CancelDelete()
			fmt.Println("Dibatalkan.")
			return nil
		}
	}

	return ctl.ConfirmDelete(ctx)
}

func runExport(ctx context.Context, ctl *logbook.Controller, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", export.DefaultFilename, "output filename")
	search := fs.String("search", "", "export only records matching this filter")
	fs.Parse(args)

	if err := ctl.Load(ctx); err != nil {
		return err
	}
	ctl.SetSearchTerm(*search)

	if err := ctl.Export(*out); err != nil {
		return err
	}
	fmt.Println("Tersimpan:", *out)
	return nil
}

func runWatch(ctx context.Context, apiURL string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	wsURL := strings.Replace(apiURL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	fmt.Println("Menunggu perubahan... (Ctrl+C untuk berhenti)")
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		var ev realtime.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		fmt.Printf("%s id=%s\n", ev.Type, ev.ID)
	}
}

func validateInput(in model.RecordInput) error {
	switch {
	case strings.TrimSpace(in.Date) == "":
		return fmt.Errorf("tanggal diperlukan (-date)")
	case strings.TrimSpace(in.Time) == "":
		return fmt.Errorf("jam backup diperlukan (-time)")
	case strings.TrimSpace(in.BackupNumber) == "":
		return fmt.Errorf("nomor backup diperlukan (-number)")
	case strings.TrimSpace(in.Performer) == "":
		return fmt.Errorf("nama pelaksana diperlukan (-performer)")
	}
	if _, err := month.ParseDate(in.Date); err != nil {
		return fmt.Errorf("format tanggal harus YYYY-MM-DD")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
