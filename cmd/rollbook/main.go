// Command rollbook is the interactive surface over the attendance register:
// roster edits, per-day marking, summaries, exports, and backup restore.
// Weekday enforcement and destructive-action confirmation live here, not in
// the store.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"rollbook/internal/adapters/export"
	"rollbook/internal/core"
	"rollbook/internal/infra/blob"
	"rollbook/pkg/register"
)

var exitFunc = os.Exit

func main() {
	log.SetFlags(0)
	log.SetPrefix("rollbook: ")
	if len(os.Args) < 2 {
		usage()
		exitFunc(2)
		return
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		log.Println(err)
		exitFunc(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: rollbook <command> [flags]

commands:
  add       -name <name> -roll <roll>
  update    -roll <roll> [-name <new name>] [-new-roll <roll>]
  remove    -roll <roll>
  list
  day       -date <YYYY-MM-DD>
  mark      -date <YYYY-MM-DD> -roll <roll> [-present|-absent] [-notes <text>]
  mark-all  -date <YYYY-MM-DD> [-present|-absent]
  summary   -date <YYYY-MM-DD>
  export    -format csv|doc|backup [-date <YYYY-MM-DD>]
  restore   -file <backup.json> -yes
  metrics`)
}

// app wires the register, its instrumentation, and the export path.
type app struct {
	reg       *core.Register
	publisher *export.Publisher
	gatherer  prometheus.Gatherer
}

func newApp(ctx context.Context) (*app, error) {
	storage, err := core.OpenStorageAdapter()
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	registry := prometheus.NewRegistry()
	reg := core.NewRegister(storage, core.WithMetrics(core.NewMetrics(registry)))
	report := reg.Load(ctx)
	if report.RosterRecovered {
		log.Printf("warning: stored roster was unreadable and has been reset (%v)", report.RosterCause)
	}
	if report.RegisterRecovered {
		log.Printf("warning: stored attendance records were unreadable and have been reset (%v)", report.RegisterCause)
	}
	artifacts, err := blob.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}
	publisher := export.NewPublisher(export.NewExporter(reg), artifacts,
		export.WithAuditLogger(logAudit{}))
	return &app{
		reg:       reg,
		publisher: publisher,
		gatherer:  registry,
	}, nil
}

// logAudit writes the publish audit trail to the process log.
type logAudit struct{}

func (logAudit) Record(_ context.Context, entry export.AuditEntry) {
	if entry.Status == export.PublishFailed {
		log.Printf("audit: export %s key=%s failed: %s", entry.Format, entry.Key, entry.Reason)
		return
	}
	log.Printf("audit: export %s key=%s succeeded", entry.Format, entry.Key)
}

func run(command string, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	switch command {
	case "add":
		return a.add(ctx, args)
	case "update":
		return a.update(ctx, args)
	case "remove":
		return a.remove(ctx, args)
	case "list":
		return a.list(args)
	case "day":
		return a.day(ctx, args)
	case "mark":
		return a.mark(ctx, args)
	case "mark-all":
		return a.markAll(ctx, args)
	case "summary":
		return a.summary(args)
	case "export":
		return a.export(ctx, args)
	case "restore":
		return a.restore(ctx, args)
	case "metrics":
		return a.metrics()
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// requireWeekday applies the input policy: attendance is only taken on
// weekdays. The store itself accepts any date.
func requireWeekday(dateKey string) error {
	if _, err := register.ParseDateKey(dateKey); err != nil {
		return err
	}
	if !register.IsWeekday(dateKey) {
		return fmt.Errorf("%s is a weekend; attendance is recorded on weekdays only", dateKey)
	}
	return nil
}

// reportPersist downgrades a failed write-through to a warning: the mutation
// is applied in memory and the next successful write catches storage up.
func reportPersist(err error) error {
	if err == nil {
		return nil
	}
	log.Printf("warning: state not persisted, continuing in memory: %v", err)
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name := fs.String("name", "", "student name")
	roll := fs.String("roll", "", "unique roll")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *roll == "" {
		return errors.New("add: -name and -roll are required")
	}
	student, err := a.reg.AddStudent(ctx, *name, *roll)
	var dup register.ErrDuplicateRoll
	if errors.As(err, &dup) {
		return fmt.Errorf("add: %w", err)
	}
	if err := reportPersist(err); err != nil {
		return err
	}
	fmt.Printf("added %s (roll %s)\n", student.Name, student.Roll)
	return nil
}

func (a *app) update(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	roll := fs.String("roll", "", "current roll")
	name := fs.String("name", "", "new name (default: keep)")
	newRoll := fs.String("new-roll", "", "new roll (default: keep)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *roll == "" {
		return errors.New("update: -roll is required")
	}
	current, ok := a.findStudent(*roll)
	if !ok {
		return fmt.Errorf("update: no student with roll %s", *roll)
	}
	if *name == "" {
		*name = current.Name
	}
	if *newRoll == "" {
		*newRoll = current.Roll
	}
	student, err := a.reg.UpdateStudent(ctx, *roll, *name, *newRoll)
	var dup register.ErrDuplicateRoll
	if errors.As(err, &dup) {
		return fmt.Errorf("update: %w", err)
	}
	var missing register.ErrStudentNotFound
	if errors.As(err, &missing) {
		return fmt.Errorf("update: %w", err)
	}
	if err := reportPersist(err); err != nil {
		return err
	}
	fmt.Printf("updated %s (roll %s)\n", student.Name, student.Roll)
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	roll := fs.String("roll", "", "roll to remove")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *roll == "" {
		return errors.New("remove: -roll is required")
	}
	if err := reportPersist(a.reg.DeleteStudent(ctx, *roll)); err != nil {
		return err
	}
	fmt.Printf("removed roll %s\n", *roll)
	return nil
}

func (a *app) list(args []string) error {
	if len(args) > 0 {
		return errors.New("list: takes no flags")
	}
	students := a.reg.Students()
	if len(students) == 0 {
		fmt.Println("roster is empty")
		return nil
	}
	for i, s := range students {
		fmt.Printf("%3d. %-24s roll %s\n", i+1, s.Name, s.Roll)
	}
	return nil
}

func (a *app) day(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("day", flag.ExitOnError)
	date := fs.String("date", "", "date key YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireWeekday(*date); err != nil {
		return err
	}
	if err := reportPersist(a.reg.MaterializeDate(ctx, *date)); err != nil {
		return err
	}
	for i, e := range a.reg.Day(*date) {
		status := "absent"
		if e.Present {
			status = "present"
		}
		fmt.Printf("%3d. %-24s roll %-8s %-7s %s\n", i+1, e.Name, e.Roll, status, e.Notes)
	}
	return nil
}

func (a *app) mark(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mark", flag.ExitOnError)
	date := fs.String("date", "", "date key YYYY-MM-DD")
	roll := fs.String("roll", "", "roll to mark")
	present := fs.Bool("present", false, "mark present")
	absent := fs.Bool("absent", false, "mark absent")
	notes := fs.String("notes", "", "notes text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireWeekday(*date); err != nil {
		return err
	}
	if *roll == "" {
		return errors.New("mark: -roll is required")
	}
	if *present && *absent {
		return errors.New("mark: -present and -absent are mutually exclusive")
	}
	var patch register.Patch
	if *present || *absent {
		v := *present
		patch.Present = &v
	}
	if noteFlagSet(fs) {
		patch.Notes = notes
	}
	err := a.reg.SetAttendance(ctx, *date, *roll, patch)
	var notFound register.ErrRollNotFound
	if errors.As(err, &notFound) {
		return fmt.Errorf("mark: %w", err)
	}
	return reportPersist(err)
}

func noteFlagSet(fs *flag.FlagSet) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "notes" {
			set = true
		}
	})
	return set
}

func (a *app) markAll(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mark-all", flag.ExitOnError)
	date := fs.String("date", "", "date key YYYY-MM-DD")
	present := fs.Bool("present", false, "mark everyone present")
	absent := fs.Bool("absent", false, "mark everyone absent")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireWeekday(*date); err != nil {
		return err
	}
	if *present == *absent {
		return errors.New("mark-all: pass exactly one of -present or -absent")
	}
	return reportPersist(a.reg.MarkAll(ctx, *date, *present))
}

func (a *app) summary(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	date := fs.String("date", "", "date key YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := register.ParseDateKey(*date); err != nil {
		return err
	}
	sum := a.reg.Summarize(*date)
	fmt.Printf("%s: %d/%d present\n", *date, sum.Present, sum.Total)
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "csv", "csv|doc|backup")
	date := fs.String("date", "", "date key YYYY-MM-DD (csv and doc only)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f := export.Format(*format)
	if f == export.FormatCSV || f == export.FormatDoc {
		if _, err := register.ParseDateKey(*date); err != nil {
			return err
		}
	}
	info, err := a.publisher.Publish(ctx, f, *date)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if info.URL != "" {
		fmt.Printf("exported %s (%d bytes) at %s\n", info.Key, info.Size, info.URL)
	} else {
		fmt.Printf("exported %s (%d bytes)\n", info.Key, info.Size)
	}
	return nil
}

func (a *app) restore(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	file := fs.String("file", "", "backup JSON file")
	yes := fs.Bool("yes", false, "confirm overwriting all current data")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("restore: -file is required")
	}
	if !*yes {
		return errors.New("restore replaces the entire roster and all attendance records; re-run with -yes to confirm")
	}
	payload, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	snap, err := export.ParseBackup(payload)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if err := reportPersist(a.reg.ReplaceState(ctx, snap)); err != nil {
		return err
	}
	fmt.Println("restore complete")
	return nil
}

func (a *app) metrics() error {
	families, err := a.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(os.Stdout, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}

func (a *app) findStudent(roll string) (register.Student, bool) {
	for _, s := range a.reg.Students() {
		if s.Roll == roll {
			return s, true
		}
	}
	return register.Student{}, false
}
