package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/icewire/config"
	"github.com/wippyai/icewire/decoder"
	"github.com/wippyai/icewire/telemetry"
)

func main() {
	var (
		file        = flag.String("file", "", "Path to a raw Slice-encoded encapsulation")
		kind        = flag.String("kind", "class", "Top-level value kind: class or exception")
		depthMax    = flag.Int("depth-max", 0, "Class graph depth limit (0 = default)")
		seqSizeMax  = flag.Int("seq-size-max", 0, "Aggregate sequence-size budget (0 = buffer length)")
		trace       = flag.Bool("trace", false, "Enable slicing trace logging to stderr")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	// icedump's interactive mode always needs a real file (it re-reads it
	// lazily from Init), but the non-interactive dumper can just as well
	// consume a piped encapsulation, the way any other Unix filter does.
	stdinPiped := !term.IsTerminal(int(os.Stdin.Fd()))

	if *file == "" && (*interactive || !stdinPiped) {
		fmt.Fprintln(os.Stderr, "Usage: icedump -file <blob> [-kind class|exception] [-depth-max N] [-seq-size-max N] [-trace]")
		fmt.Fprintln(os.Stderr, "       icedump -file <blob> -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       <producer> | icedump  (reads the encapsulation from stdin)")
		os.Exit(1)
	}

	if *trace {
		l, _ := zap.NewDevelopment()
		telemetry.SetLogger(l)
	}

	cfg := config.Default()
	if *depthMax > 0 {
		cfg.ClassGraphDepthMax = *depthMax
	}
	cfg.SequenceSizeMax = *seqSizeMax
	cfg.TraceSlicing = *trace

	if *interactive {
		if err := runInteractive(*file, cfg, *kind); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := dump(*file, cfg, *kind); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func dump(file string, cfg config.Config, kind string) error {
	var (
		data   []byte
		err    error
		source string
	)
	if file == "" {
		data, err = io.ReadAll(os.Stdin)
		source = "<stdin>"
	} else {
		data, err = os.ReadFile(file)
		source = file
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	root, err := decodeTop(data, cfg, kind)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	fmt.Printf("Source: %s (%d bytes)\n\n", source, len(data))
	printNode(root, 0)
	return nil
}

// decodeTop decapsulates data and reads its single top-level value with no
// class or exception factories registered, so every slice comes back as an
// UnknownSlicedClass carrying its own preserved bytes and any instances
// resolved through its indirection table. That's exactly what a generic
// dumper needs: it has no generated code to know a slice's member layout,
// but it can still show the slice boundaries and any class graph reachable
// through indirection-table references. For kind "exception" the same lack
// of factories makes ReadUserException return an unknown-user-exception
// error instead of a value.
func decodeTop(data []byte, cfg config.Config, kind string) (any, error) {
	s := decoder.New(data, cfg, decoder.Deps{})
	if _, err := s.StartEncapsulation(); err != nil {
		return nil, err
	}

	var v any
	var err error
	switch strings.ToLower(kind) {
	case "exception":
		v, err = s.ReadUserException()
	default:
		v, err = s.ReadClass()
	}
	if err != nil {
		return nil, err
	}
	if err := s.EndEncapsulation(); err != nil {
		return nil, err
	}
	return v, nil
}

func printNode(v any, depth int) {
	n := buildTree(v)
	printTree(n, depth)
}

func printTree(n *treeNode, depth int) {
	fmt.Printf("%s%s\n", strings.Repeat("  ", depth), n.label)
	for _, c := range n.children {
		printTree(c, depth+1)
	}
}
