package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Fepozopo/imgbench/pkg/chart"
	"github.com/Fepozopo/imgbench/pkg/config"
	"github.com/Fepozopo/imgbench/pkg/engine"
	"github.com/Fepozopo/imgbench/pkg/imgproc"
)

// ErrQuit is returned by Exec when the quit command runs.
var ErrQuit = errors.New("quit")

// Session drives an engine from text commands, interactively or from a
// script. It is not safe for concurrent use.
type Session struct {
	Engine *engine.Engine
	Config config.Config
	Out    io.Writer
	Err    io.Writer
	Logger *slog.Logger

	// Getenv reads the terminal environment for previews.
	Getenv func(string) string
	// PickFile chooses a file when load is given no path.
	PickFile func(dir string) (string, error)

	in *bufio.Reader
}

// NewSession creates a session writing results to out and diagnostics to
// errOut.
func NewSession(eng *engine.Engine, cfg config.Config, out, errOut io.Writer) *Session {
	return &Session{
		Engine:   eng,
		Config:   cfg,
		Out:      out,
		Err:      errOut,
		Logger:   slog.New(slog.DiscardHandler),
		Getenv:   os.Getenv,
		PickFile: SelectFileWithFzf,
		in:       bufio.NewReader(os.Stdin),
	}
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.Out, format, args...)
}

// PromptLine writes prompt and reads one trimmed line from the session's
// input.
func (s *Session) PromptLine(prompt string) (string, error) {
	fmt.Fprint(s.Out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Exec runs one command line. Blank lines and lines starting with '#' are
// ignored.
func (s *Session) Exec(ctx context.Context, line string) error {
	fields, err := splitFields(line)
	if err != nil {
		return err
	}
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	c, ok := LookupCommand(fields[0])
	if !ok {
		return fmt.Errorf("unknown command %q; type 'help' for a list", fields[0])
	}
	args := fields[1:]
	if err := c.checkArity(args); err != nil {
		return err
	}
	s.Logger.Debug("command", "name", c.Name, "args", args)
	return c.Run(ctx, s, args)
}

// RunREPL reads commands from in until quit or end of input.
func (s *Session) RunREPL(ctx context.Context, in io.Reader) error {
	s.in = bufio.NewReader(in)
	s.printf("imgbench %s - image processing workbench\n", Version)
	s.printf("Type 'help' for commands, 'quit' to leave.\n")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.Out, "> ")
		line, rerr := s.in.ReadString('\n')
		if line != "" {
			err := s.Exec(ctx, line)
			if errors.Is(err, ErrQuit) {
				s.printf("Exiting...\n")
				return nil
			}
			if err != nil {
				s.reportError(err)
			}
		}
		if rerr == io.EOF {
			s.printf("\n")
			return nil
		}
		if rerr != nil {
			return fmt.Errorf("read input: %w", rerr)
		}
	}
}

// RunScript executes the commands in r and stops at the first failure.
// name is used in error messages.
func (s *Session) RunScript(ctx context.Context, r io.Reader, name string) error {
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		err := s.Exec(ctx, sc.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (s *Session) reportError(err error) {
	if k := engine.Kind(err); k != engine.KindInternal && k != engine.KindNone {
		fmt.Fprintf(s.Err, "error [%s]: %v\n", k, err)
		return
	}
	fmt.Fprintf(s.Err, "error: %v\n", err)
}

// splitFields splits a command line on whitespace, keeping double-quoted
// sections together.
func splitFields(line string) ([]string, error) {
	var (
		fields  []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			if started {
				fields = append(fields, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	if started {
		fields = append(fields, cur.String())
	}
	return fields, nil
}

// parseIndex accepts a record index or "last".
func (s *Session) parseIndex(name, v string) (int, error) {
	if v == "last" || v == "$" {
		return s.Engine.Len() - 1, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: want a record index, got %q", name, v)
	}
	return n, nil
}

func parseInt(name, v string) (int, error) {
	n, err := strconv.ParseInt(v, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: want an integer, got %q", name, v)
	}
	return int(n), nil
}

func parseFloat(name, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: want a number, got %q", name, v)
	}
	return f, nil
}

func (s *Session) printRecord(rec engine.Record) {
	src := "-"
	if rec.Source != engine.NoSource {
		src = strconv.Itoa(rec.Source)
	}
	s.printf("#%-3d %-28s src=%-3s %dx%d depth=%d gray=%t %s (%s)\n",
		rec.Index, rec.Kind, src, rec.Grid.Width, rec.Grid.Height,
		rec.BitDepth, rec.IsGrayscale, rec.Params, rec.Elapsed.Round(time.Microsecond))
}

func cmdLoad(ctx context.Context, s *Session, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		picked, err := s.PickFile(".")
		if err != nil {
			return fmt.Errorf("load: no path given and file picker failed: %w", err)
		}
		path = picked
	}
	img, format, err := LoadImage(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	rec, err := s.Engine.LoadImage(ctx, img)
	if err != nil {
		return err
	}
	s.printf("Opened %s (%s)\n", path, format)
	s.printRecord(rec)
	return nil
}

func cmdSave(_ context.Context, s *Session, args []string) error {
	i, err := s.parseIndex("index", args[0])
	if err != nil {
		return err
	}
	rec, err := s.Engine.Record(i)
	if err != nil {
		return err
	}
	if err := SaveImage(args[1], rec.Grid.NRGBA()); err != nil {
		return fmt.Errorf("save %s: %w", args[1], err)
	}
	s.printf("Saved #%d to %s\n", i, args[1])
	return nil
}

func cmdList(_ context.Context, s *Session, _ []string) error {
	recs := s.Engine.Records()
	if len(recs) == 0 {
		s.printf("history is empty\n")
		return nil
	}
	for _, r := range recs {
		s.printRecord(r)
	}
	return nil
}

func cmdInfo(_ context.Context, s *Session, args []string) error {
	i, err := s.parseIndex("index", args[0])
	if err != nil {
		return err
	}
	rec, err := s.Engine.Record(i)
	if err != nil {
		return err
	}
	h, err := s.Engine.Histogram(i)
	if err != nil {
		return err
	}
	s.printRecord(rec)
	s.printf("     %s\n", chart.Summary(h))
	return nil
}

func cmdHist(_ context.Context, s *Session, args []string) error {
	i, err := s.parseIndex("index", args[0])
	if err != nil {
		return err
	}
	h, err := s.Engine.Histogram(i)
	if err != nil {
		return err
	}
	s.printf("#%d %s\n", i, chart.Summary(h))
	if len(args) < 2 {
		return nil
	}
	path := args[1]
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		format = "png"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := chart.WriteHistogram(f, h, fmt.Sprintf("Histogram of record #%d", i), format, 0, 0); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.printf("Wrote histogram chart to %s\n", path)
	return nil
}

func cmdPreview(_ context.Context, s *Session, args []string) error {
	v := "last"
	if len(args) > 0 {
		v = args[0]
	}
	i, err := s.parseIndex("index", v)
	if err != nil {
		return err
	}
	rec, err := s.Engine.Record(i)
	if err != nil {
		return err
	}
	return PreviewImage(s.Out, s.Getenv, rec.Grid.NRGBA())
}

func cmdResample(ctx context.Context, s *Session, args []string) error {
	method, err := imgproc.ParseResampleMethod(strings.ToLower(args[0]))
	if err != nil {
		return err
	}
	src, err := s.parseIndex("source", args[1])
	if err != nil {
		return err
	}
	w, err := parseInt("width", args[2])
	if err != nil {
		return err
	}
	h, err := parseInt("height", args[3])
	if err != nil {
		return err
	}
	rec, err := s.Engine.Resample(ctx, method, src, w, h)
	if err != nil {
		return err
	}
	s.printRecord(rec)
	return nil
}

func cmdGray(ctx context.Context, s *Session, args []string) error {
	src, err := s.parseIndex("source", args[0])
	if err != nil {
		return err
	}
	bit, err := parseInt("bit", args[1])
	if err != nil {
		return err
	}
	rec, err := s.Engine.GrayLevelResolution(ctx, src, bit)
	if err != nil {
		return err
	}
	s.printRecord(rec)
	return nil
}

func cmdBitPlane(ctx context.Context, s *Session, args []string) error {
	src, err := s.parseIndex("source", args[0])
	if err != nil {
		return err
	}
	mask, err := parseInt("mask", args[1])
	if err != nil {
		return err
	}
	rec, err := s.Engine.BitPlaneRemoval(ctx, src, mask)
	if err != nil {
		return err
	}
	s.printRecord(rec)
	return nil
}

func cmdEqualize(ctx context.Context, s *Session, args []string) error {
	src, err := s.parseIndex("source", args[0])
	if err != nil {
		return err
	}
	var rec engine.Record
	switch len(args) {
	case 1:
		rec, err = s.Engine.HistogramEqualization(ctx, src, 0)
	case 2:
		size, perr := parseInt("size", args[1])
		if perr != nil {
			return perr
		}
		rec, err = s.Engine.HistogramEqualization(ctx, src, size)
	case 5:
		var c [4]int
		for j, name := range []string{"x0", "y0", "x1", "y1"} {
			if c[j], err = parseInt(name, args[j+1]); err != nil {
				return err
			}
		}
		rec, err = s.Engine.HistogramEqualizationRegion(ctx, src, image.Rect(c[0], c[1], c[2], c[3]))
	default:
		return fmt.Errorf("equalize: want a size or four region coordinates; usage: equalize <source> [size | x0 y0 x1 y1]")
	}
	if err != nil {
		return err
	}
	s.printRecord(rec)
	return nil
}

// parseFilterOptions reads key=value pairs over the defaults.
func parseFilterOptions(opts []string) (engine.FilterRequest, error) {
	req := engine.FilterRequest{
		Size:    3,
		K:       1,
		Sigma:   1,
		Mask:    imgproc.Mask4,
		Process: imgproc.ProcessNone,
		Blurred: engine.NoSource,
		BoostK:  1,
	}
	for _, o := range opts {
		key, val, ok := strings.Cut(o, "=")
		if !ok {
			return req, fmt.Errorf("filter: option %q is not key=value", o)
		}
		var err error
		switch strings.ToLower(key) {
		case "size":
			req.Size, err = parseInt(key, val)
		case "k":
			req.K, err = parseFloat(key, val)
		case "sigma":
			req.Sigma, err = parseFloat(key, val)
		case "order", "q":
			req.Order, err = parseFloat(key, val)
		case "d":
			req.D, err = parseInt(key, val)
		case "mask":
			req.Mask, err = imgproc.ParseMaskMode(strings.ToLower(val))
		case "process":
			req.Process, err = imgproc.ParseProcessMode(strings.ToLower(val))
		case "blurred":
			req.Blurred, err = parseInt(key, val)
		case "boost", "boostk":
			req.BoostK, err = parseFloat(key, val)
		default:
			return req, fmt.Errorf("filter: unknown option %q", key)
		}
		if err != nil {
			return req, err
		}
	}
	return req, nil
}

func cmdFilter(ctx context.Context, s *Session, args []string) error {
	method, err := imgproc.ParseFilterMethod(args[0])
	if err != nil {
		return err
	}
	src, err := s.parseIndex("source", args[1])
	if err != nil {
		return err
	}
	req, err := parseFilterOptions(args[2:])
	if err != nil {
		return err
	}
	rec, err := s.Engine.SpatialFilter(ctx, method, src, req)
	if err != nil {
		return err
	}
	s.printRecord(rec)
	return nil
}

func cmdNoise(ctx context.Context, s *Session, args []string) error {
	src, err := s.parseIndex("source", args[0])
	if err != nil {
		return err
	}
	var req engine.NoiseRequest
	if req.Mean, err = parseFloat("mean", args[1]); err != nil {
		return err
	}
	if req.Sigma, err = parseFloat("sigma", args[2]); err != nil {
		return err
	}
	if req.K, err = parseFloat("k", args[3]); err != nil {
		return err
	}
	if len(args) > 4 {
		seed, perr := strconv.ParseInt(args[4], 10, 64)
		if perr != nil {
			return fmt.Errorf("seed: want an integer, got %q", args[4])
		}
		req.Seed = seed
	}
	rec, err := s.Engine.NoiseInjection(ctx, src, req)
	if err != nil {
		return err
	}
	s.printRecord(rec)
	return nil
}

func cmdOp(ctx context.Context, s *Session, args []string) error {
	op, err := imgproc.ParseBinaryOp(args[0])
	if err != nil {
		return err
	}
	src, err := s.parseIndex("source", args[1])
	if err != nil {
		return err
	}
	other := engine.NoSource
	if op.NeedsOperand() {
		if len(args) < 3 {
			return fmt.Errorf("op %s: missing other; usage: op <add|sub|scale> <source> [other]", op)
		}
		if other, err = s.parseIndex("other", args[2]); err != nil {
			return err
		}
	}
	rec, err := s.Engine.BinaryOp(ctx, op, src, other)
	if err != nil {
		return err
	}
	s.printRecord(rec)
	return nil
}

func cmdPop(_ context.Context, s *Session, _ []string) error {
	if err := s.Engine.PopLast(); err != nil {
		return err
	}
	s.printf("Removed the newest record; %d left\n", s.Engine.Len())
	return nil
}

func cmdReset(_ context.Context, s *Session, _ []string) error {
	if err := s.Engine.Reset(); err != nil {
		return err
	}
	s.printf("History cleared\n")
	return nil
}

func cmdStatus(_ context.Context, s *Session, _ []string) error {
	s.printf("status: %s\nrecords: %d\n", s.Engine.Status(), s.Engine.Len())
	if msg := s.Engine.LastError(); msg != "" {
		s.printf("last error: %s\n", msg)
	} else {
		s.printf("last error: none\n")
	}
	return nil
}

func cmdUpdate(ctx context.Context, s *Session, _ []string) error {
	return CheckForUpdates(ctx, s.Out, s.Config.UpdateRepo, func(prompt string) (bool, error) {
		answer, err := s.PromptLine(prompt)
		if err != nil {
			return false, err
		}
		answer = strings.ToLower(answer)
		return answer == "y" || answer == "yes", nil
	})
}

func cmdHelp(_ context.Context, s *Session, args []string) error {
	if len(args) > 0 {
		c, ok := LookupCommand(args[0])
		if !ok {
			return fmt.Errorf("help: unknown command %q", args[0])
		}
		s.printf("%s\n", c.Tooltip())
		if c.Name == "filter" {
			s.printf("Methods:\n")
			for _, m := range imgproc.FilterMethods() {
				s.printf("  %s\n", m)
			}
		}
		return nil
	}
	s.printf("Commands available:\n")
	for _, c := range Commands {
		s.printf("  %-44s %s\n", c.Usage, c.Description)
	}
	s.printf("Indices may be given as 'last'.\n")
	return nil
}
