package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lk2023060901/collate-go/internal/keyfile"
	"github.com/lk2023060901/collate-go/internal/keyset"
	"github.com/lk2023060901/collate-go/internal/serializer"
	"github.com/lk2023060901/collate-go/pkg/collate"
	"github.com/lk2023060901/collate-go/pkg/log"
	"github.com/lk2023060901/collate-go/pkg/metrics"
)

const maxLineSize = 16 * 1024 * 1024

func newFlagSet(e *env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

// parseFlags 将 flag 包的解析错误转换为 errUsage。
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

// openInput 返回 args 中唯一的文件，没有参数时返回标准输入。
func openInput(e *env, args []string) (io.ReadCloser, error) {
	switch len(args) {
	case 0:
		return io.NopCloser(e.stdin), nil
	case 1:
		if args[0] == "-" {
			return io.NopCloser(e.stdin), nil
		}
		return os.Open(args[0])
	default:
		return nil, errUsage
	}
}

// eachLine 对每个非空行调用 fn，lineNo 从 1 开始。
func eachLine(r io.Reader, fn func(lineNo int, line []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if err := fn(lineNo, line); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

func readValues(e *env, args []string) ([]collate.Value, error) {
	in, err := openInput(e, args)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	var values []collate.Value
	err = eachLine(in, func(_ int, line []byte) error {
		v, err := serializer.ParseJSON(line)
		if err != nil {
			return err
		}
		values = append(values, v)
		return nil
	})
	return values, err
}

func writeJSONLine(w *bufio.Writer, v collate.Value) error {
	out, err := serializer.AppendJSON(nil, v)
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}

// formatKey 以十六进制或 Go 字符串字面量形式输出编码结果。
func formatKey(key []byte, useHex bool) string {
	if useHex {
		return hex.EncodeToString(key)
	}
	return strconv.Quote(string(key))
}

func parseKey(line string, useHex bool) ([]byte, error) {
	line = strings.TrimSpace(line)
	if useHex {
		return hex.DecodeString(line)
	}
	s, err := strconv.Unquote(line)
	if err != nil {
		return nil, fmt.Errorf("expected a quoted string: %w", err)
	}
	return []byte(s), nil
}

func runEncode(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "encode")
	useHex := fs.Bool("hex", false, "print keys as hex instead of quoted strings")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	in, err := openInput(e, fs.Args())
	if err != nil {
		return err
	}
	defer in.Close()

	s := serializer.CollateSerializer{}
	w := bufio.NewWriter(e.stdout)
	defer w.Flush()
	count := 0
	err = eachLine(in, func(_ int, line []byte) error {
		v, err := serializer.ParseJSON(line)
		if err != nil {
			return err
		}
		key, err := s.Marshal(v)
		if err != nil {
			return err
		}
		count++
		_, err = fmt.Fprintln(w, formatKey(key, *useHex))
		return err
	})
	log.Ctx(ctx).Debug("encode done", zap.Int("values", count))
	return err
}

func runDecode(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "decode")
	useHex := fs.Bool("hex", false, "read keys as hex instead of quoted strings")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	in, err := openInput(e, fs.Args())
	if err != nil {
		return err
	}
	defer in.Close()

	s := serializer.CollateSerializer{}
	w := bufio.NewWriter(e.stdout)
	defer w.Flush()
	return eachLine(in, func(_ int, line []byte) error {
		key, err := parseKey(string(line), *useHex)
		if err != nil {
			return err
		}
		var v collate.Value
		if err := s.Unmarshal(key, &v); err != nil {
			log.Ctx(ctx).RatedWarn(1, "failed to decode key", log.FieldKey(key), zap.Error(err))
			return err
		}
		return writeJSONLine(w, v)
	})
}

func runNumkey(_ context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	for _, arg := range args {
		n, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", arg)
		}
		key := collate.NumberToSortable(n)
		if key == "" {
			return fmt.Errorf("%q is not a finite number", arg)
		}
		fmt.Fprintln(e.stdout, key)
	}
	return nil
}

func runCompare(_ context.Context, e *env, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	a, err := serializer.ParseJSON([]byte(args[0]))
	if err != nil {
		return err
	}
	b, err := serializer.ParseJSON([]byte(args[1]))
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, collate.Compare(a, b))
	return nil
}

func runSort(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "sort")
	out := fs.String("out", "", "also write the sorted keys to this keyfile")
	dedup := fs.Bool("dedup", false, "drop values whose keys are identical")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	values, err := readValues(e, fs.Args())
	if err != nil {
		return err
	}

	settings := e.app.Settings()
	entries, err := keyset.Build(ctx, values,
		keyset.WithWorkers(settings.Keyset.Workers),
		keyset.WithLogger(e.app.Logger("keyset")),
	)
	if err != nil {
		return err
	}
	if *dedup {
		entries = keyset.Dedup(entries)
	}

	if *out != "" {
		if err := writeKeyfile(ctx, e, *out, entries); err != nil {
			return err
		}
	}

	w := bufio.NewWriter(e.stdout)
	defer w.Flush()
	for _, entry := range entries {
		if err := writeJSONLine(w, entry.Value); err != nil {
			return err
		}
	}
	return nil
}

func writeKeyfile(ctx context.Context, e *env, path string, entries []keyset.Entry) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	settings := e.app.Settings().Keyfile
	bw := bufio.NewWriter(f)
	w, err := keyfile.NewWriter(bw, keyfile.Options{
		Compress:        settings.Compress,
		MinCompressSize: settings.MinCompressSize,
		MaxFrameSize:    settings.MaxFrameSize,
	})
	if err != nil {
		return err
	}
	defer w.Close()
	for _, entry := range entries {
		if err := w.Append(entry.Key); err != nil {
			return err
		}
	}
	log.Ctx(ctx).Info("keyfile written", zap.String("path", path), zap.Int("keys", w.Count()))
	return bw.Flush()
}

func runDump(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := keyfile.NewReader(bufio.NewReader(f), e.app.Settings().Keyfile.MaxFrameSize)
	if err != nil {
		return err
	}
	defer r.Close()

	w := bufio.NewWriter(e.stdout)
	defer w.Flush()
	n := 0
	for {
		key, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		v, err := collate.Decode(key)
		if err != nil {
			return fmt.Errorf("key #%d: %w", n, err)
		}
		metrics.EncodedKeyBytes.Observe(float64(len(key)))
		if err := writeJSONLine(w, v); err != nil {
			return err
		}
		n++
	}
	log.Ctx(ctx).Debug("keyfile dumped", zap.String("path", args[0]), zap.Int("keys", n))
	return nil
}

func runVersion(_ context.Context, e *env, _ []string) error {
	fmt.Fprintf(e.stdout, "collate %s (keyfile format %s)\n", version, keyfile.Version)
	return nil
}
