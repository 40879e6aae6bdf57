package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ipld/go-ipld-prime/codec/dagcbor"
	"github.com/ipld/go-ipld-prime/codec/dagjson"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/nasdf/treehash"
	"github.com/nasdf/treehash/config"
	"github.com/nasdf/treehash/digest"
	"github.com/nasdf/treehash/link"
	"github.com/nasdf/treehash/reader"
	"github.com/nasdf/treehash/storage"
	"github.com/nasdf/treehash/value"
)

const stdinName = "-"

// run hashes every input and writes one line per digest to out.
func run(ctx context.Context, cfg config.Config, inputs []string, out io.Writer) error {
	provider, err := cfg.Provider()
	if err != nil {
		return err
	}
	if cfg.Export != "" && len(inputs) != 1 {
		return fmt.Errorf("export needs exactly one input, got %d", len(inputs))
	}
	for _, name := range inputs {
		sums, err := hashInput(ctx, cfg, provider, name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		log.Infof("hashed %d values from %s", len(sums), name)
		for _, sum := range sums {
			if _, err := fmt.Fprintf(out, "%s  %s\n", sum, name); err != nil {
				return err
			}
		}
	}
	return nil
}

// source is a decoded input. IPLD inputs keep their blocks and root
// nodes so that they can be exported.
type source struct {
	reader reader.Reader
	store  *link.Store
	nodes  []datamodel.Node
}

func hashInput(ctx context.Context, cfg config.Config, provider digest.Provider, name string) ([]digest.Hash, error) {
	in, err := open(name)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	log.Debugf("reading %s as %s", name, cfg.Format)
	src, err := load(ctx, cfg, in)
	if err != nil {
		return nil, err
	}
	sums, err := treehash.Sum(src.reader, provider, cfg.HasherOptions()...)
	if err != nil {
		return nil, err
	}
	if cfg.Export != "" {
		if err := export(ctx, src, cfg.Export); err != nil {
			return nil, err
		}
	}
	return sums, nil
}

func open(name string) (io.ReadCloser, error) {
	if name == stdinName {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

// load decodes all top level values of the input.
func load(ctx context.Context, cfg config.Config, in io.Reader) (*source, error) {
	switch cfg.Format {
	case config.FormatCBOR:
		r, err := reader.NewCBORReader(in)
		if err != nil {
			return nil, err
		}
		return &source{reader: r}, nil
	case config.FormatYAML:
		values, err := value.DecodeYAML(in)
		if err != nil {
			return nil, err
		}
		return &source{reader: reader.NewTreeReader(values...)}, nil
	}

	store := link.NewStore(storage.NewMemory())
	var nodes []datamodel.Node
	var opts []reader.NodeOption
	switch cfg.Format {
	case config.FormatDagJSON:
		n, err := decodeNode(in, dagjson.Decode)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	case config.FormatDagCBOR:
		n, err := decodeNode(in, dagcbor.Decode)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	case config.FormatCAR:
		roots, err := store.Import(ctx, in)
		if err != nil {
			return nil, err
		}
		if nodes, err = store.LoadAll(ctx, roots); err != nil {
			return nil, err
		}
		if cfg.FollowLinks {
			opts = append(opts, reader.WithLoader(store.Loader(ctx)))
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", cfg.Format)
	}
	return &source{
		reader: reader.NewNodeReader(nodes, opts...),
		store:  store,
		nodes:  nodes,
	}, nil
}

func decodeNode(in io.Reader, decode func(datamodel.NodeAssembler, io.Reader) error) (datamodel.Node, error) {
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := decode(nb, in); err != nil {
		return nil, err
	}
	return nb.Build(), nil
}

// export writes the DAG of the single root node of src to a CAR file.
func export(ctx context.Context, src *source, path string) error {
	if src.store == nil {
		return fmt.Errorf("only ipld inputs can be exported")
	}
	if len(src.nodes) != 1 {
		return fmt.Errorf("export needs exactly one root, got %d", len(src.nodes))
	}
	root, err := src.store.Store(ctx, src.nodes[0])
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := src.store.Export(ctx, root, out); err != nil {
		out.Close()
		return err
	}
	log.Infof("exported %s to %s", root, path)
	return out.Close()
}
