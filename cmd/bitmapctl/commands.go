package main

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"

	"github.com/hupe1980/genbitmap"
	"github.com/hupe1980/genbitmap/blobstore"
	"github.com/hupe1980/genbitmap/snapshot"
	"github.com/urfave/cli"
)

var codecFlag = cli.StringFlag{
	Name:  "codec, c",
	Usage: "snapshot codec, none|lz4|zstd|roaring",
	Value: "none",
}

func (e *env) store(c *cli.Context) (blobstore.Store, error) {
	loc, err := parseStoreURL(c.GlobalString("store"))
	if err != nil {
		return nil, err
	}
	return openStore(e.ctx, loc)
}

func (e *env) load(store blobstore.Store, name string) (*genbitmap.Bitmap, error) {
	return snapshot.Load(e.ctx, store, name,
		snapshot.WithLogger(e.logger),
		snapshot.WithBitmapOptions(genbitmap.WithLogger(e.logger)),
	)
}

func (e *env) save(store blobstore.Store, name string, bm *genbitmap.Bitmap, codec snapshot.Codec) error {
	return snapshot.Save(e.ctx, store, name, bm,
		snapshot.WithCodec(codec),
		snapshot.WithLogger(e.logger),
	)
}

func requireArgs(c *cli.Context, n int, usage string) error {
	if c.NArg() < n {
		return fmt.Errorf("usage: bitmapctl %s %s", c.Command.Name, usage)
	}
	return nil
}

func parseIndex(s string) (uint64, error) {
	idx, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return idx, nil
}

func parseBit(s string) (bool, error) {
	switch s {
	case "1", "true", "on":
		return true, nil
	case "0", "false", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid bit value %q, want 0 or 1", s)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// popCount counts set bits below bitCount, ignoring trailing bits.
func popCount(bm *genbitmap.Bitmap) uint64 {
	data := bm.Snapshot()
	var n uint64
	for _, b := range data {
		n += uint64(bits.OnesCount8(b))
	}
	if rem := bm.Size() % 8; rem != 0 && len(data) > 0 {
		n -= uint64(bits.OnesCount8(data[len(data)-1] & (0xFF >> rem)))
	}
	return n
}

func cmdCreate(e *env) cli.Command {
	return cli.Command{
		Name:      "create",
		Usage:     "create an empty bitmap snapshot",
		ArgsUsage: "--bits N <name>",
		Flags: []cli.Flag{
			cli.Uint64Flag{
				Name:  "bits, b",
				Usage: "number of addressable bits",
			},
			codecFlag,
			cli.BoolFlag{
				Name:  "force, f",
				Usage: "overwrite an existing snapshot",
			},
		},
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1, "--bits N <name>"); err != nil {
				return err
			}
			codec, err := snapshot.ParseCodec(c.String("codec"))
			if err != nil {
				return err
			}
			store, err := e.store(c)
			if err != nil {
				return err
			}

			name := c.Args().First()
			if !c.Bool("force") {
				if _, err := snapshot.Inspect(e.ctx, store, name); err == nil {
					return fmt.Errorf("%s already exists, use --force to overwrite", name)
				}
			}

			bm := genbitmap.New(c.Uint64("bits"), genbitmap.WithLogger(e.logger))
			if err := e.save(store, name, bm, codec); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "created %s: %d bits, %d bytes\n", name, bm.Size(), bm.MemorySize())
			return nil
		},
	}
}

func cmdInspect(e *env) cli.Command {
	return cli.Command{
		Name:      "inspect",
		Usage:     "print a snapshot header",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "count",
				Usage: "load the bitmap and count set bits",
			},
		},
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1, "<name>"); err != nil {
				return err
			}
			store, err := e.store(c)
			if err != nil {
				return err
			}

			name := c.Args().First()
			h, err := snapshot.Inspect(e.ctx, store, name)
			if err != nil {
				return err
			}

			w := c.App.Writer
			fmt.Fprintf(w, "name:     %s\n", name)
			fmt.Fprintf(w, "version:  %d\n", h.Version)
			fmt.Fprintf(w, "codec:    %s\n", h.Codec)
			fmt.Fprintf(w, "bits:     %d\n", h.BitCount)
			fmt.Fprintf(w, "raw:      %d bytes\n", h.RawSize)
			fmt.Fprintf(w, "payload:  %d bytes\n", h.PayloadSize)
			fmt.Fprintf(w, "checksum: %08x\n", h.Checksum)

			if c.Bool("count") {
				bm, err := e.load(store, name)
				if err != nil {
					return err
				}
				defer bm.Close()
				fmt.Fprintf(w, "set:      %d\n", popCount(bm))
			}
			return nil
		},
	}
}

func cmdGet(e *env) cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "print bits",
		ArgsUsage: "<name> <index>...",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 2, "<name> <index>..."); err != nil {
				return err
			}
			store, err := e.store(c)
			if err != nil {
				return err
			}
			bm, err := e.load(store, c.Args().First())
			if err != nil {
				return err
			}
			defer bm.Close()

			for _, arg := range c.Args().Tail() {
				idx, err := parseIndex(arg)
				if err != nil {
					return err
				}
				v, err := bm.GetChecked(idx)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%d\t%d\n", idx, boolToInt(v))
			}
			return nil
		},
	}
}

func cmdSet(e *env) cli.Command {
	return cli.Command{
		Name:      "set",
		Usage:     "assign a bit and save the snapshot",
		ArgsUsage: "[--codec CODEC] <name> <index> <0|1>",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "codec, c",
				Usage: "re-encode with this codec instead of the current one",
			},
		},
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 3, "<name> <index> <0|1>"); err != nil {
				return err
			}
			name := c.Args().Get(0)
			idx, err := parseIndex(c.Args().Get(1))
			if err != nil {
				return err
			}
			val, err := parseBit(c.Args().Get(2))
			if err != nil {
				return err
			}

			store, err := e.store(c)
			if err != nil {
				return err
			}
			h, err := snapshot.Inspect(e.ctx, store, name)
			if err != nil {
				return err
			}
			codec := h.Codec
			if s := c.String("codec"); s != "" {
				if codec, err = snapshot.ParseCodec(s); err != nil {
					return err
				}
			}

			bm, err := e.load(store, name)
			if err != nil {
				return err
			}
			defer bm.Close()

			prev, err := bm.SetChecked(idx, val)
			if err != nil {
				return err
			}
			if err := e.save(store, name, bm, codec); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%d\t%d -> %d\n", idx, boolToInt(prev), boolToInt(val))
			return nil
		},
	}
}

func cmdConvert(e *env) cli.Command {
	return cli.Command{
		Name:      "convert",
		Usage:     "re-encode a snapshot with another codec",
		ArgsUsage: "--codec CODEC <src> <dst>",
		Flags:     []cli.Flag{codecFlag},
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 2, "--codec CODEC <src> <dst>"); err != nil {
				return err
			}
			codec, err := snapshot.ParseCodec(c.String("codec"))
			if err != nil {
				return err
			}
			store, err := e.store(c)
			if err != nil {
				return err
			}

			src, dst := c.Args().Get(0), c.Args().Get(1)
			bm, err := e.load(store, src)
			if err != nil {
				return err
			}
			defer bm.Close()

			if err := e.save(store, dst, bm, codec); err != nil {
				return err
			}
			h, err := snapshot.Inspect(e.ctx, store, dst)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%s -> %s: codec %s, %d bytes\n", src, dst, h.Codec, h.FrameSize())
			return nil
		},
	}
}

func cmdList(e *env) cli.Command {
	return cli.Command{
		Name:      "list",
		Usage:     "list snapshots",
		ArgsUsage: "[prefix]",
		Action: func(c *cli.Context) error {
			store, err := e.store(c)
			if err != nil {
				return err
			}
			names, err := store.List(e.ctx, c.Args().First())
			if err != nil {
				return err
			}
			for _, name := range names {
				h, err := snapshot.Inspect(e.ctx, store, name)
				switch {
				case errors.Is(err, snapshot.ErrInvalidMagic):
					continue
				case err != nil:
					fmt.Fprintf(c.App.Writer, "%s\t%v\n", name, err)
				default:
					fmt.Fprintf(c.App.Writer, "%s\t%d bits\t%s\t%d bytes\n", name, h.BitCount, h.Codec, h.FrameSize())
				}
			}
			return nil
		},
	}
}
