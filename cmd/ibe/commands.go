package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/eth2030/pairing/crypto"
	"github.com/eth2030/pairing/crypto/ibe"
	"github.com/eth2030/pairing/keystore"
	"github.com/eth2030/pairing/log"
)

// Flags shared by several commands. Each command gets its own instance.
func idFlag() cli.Flag {
	return &cli.StringFlag{Name: "id", Usage: "recipient identity", Required: true}
}

func paramsFlag() cli.Flag {
	return &cli.StringFlag{Name: "params", Usage: "hex public parameters (default: read from the keystore)"}
}

func keyFlag() cli.Flag {
	return &cli.StringFlag{Name: "key", Usage: "hex user key (default: read from the keystore)"}
}

func aadFlag() cli.Flag {
	return &cli.StringFlag{Name: "aad", Usage: "associated data bound to a sealed message"}
}

func setupCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "generate a master key and store it in the keystore",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "seed", Usage: "message hashed to the generator P"},
		},
		Action: func(cCtx *cli.Context) error {
			pass, err := passphrase(cCtx)
			if err != nil {
				return err
			}
			if cCtx.IsSet("seed") {
				e.cfg.Seed = cCtx.String("seed")
			}
			eng, err := e.engine()
			if err != nil {
				return err
			}
			c := eng.Curve()
			mk, err := ibe.KeyGen(eng, c.HashAndMapToG1([]byte(e.cfg.Seed)))
			if err != nil {
				return err
			}
			ks, err := e.openKeystore()
			if err != nil {
				return err
			}
			defer ks.Close()
			if err := ks.Init(mk, pass); err != nil {
				return err
			}
			log.Info("Generator initialized", "curve", c.String(), "datadir", e.cfg.DataDir)
			fmt.Fprintln(e.stdout, hex.EncodeToString(mk.Params().Serialize()))
			return nil
		},
	}
}

func extractCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "issue user keys for identities",
		ArgsUsage: "<id> [<id>...]",
		Action: func(cCtx *cli.Context) error {
			ids := cCtx.Args().Slice()
			if len(ids) == 0 {
				return errors.New("extract: at least one identity required")
			}
			pass, err := passphrase(cCtx)
			if err != nil {
				return err
			}
			ks, err := e.openKeystore()
			if err != nil {
				return err
			}
			defer ks.Close()
			mk, err := ks.MasterKey(pass)
			if err != nil {
				return err
			}
			keys, err := mk.DeriveUserKeys(cCtx.Context, ids)
			if err != nil {
				return err
			}
			for _, uk := range keys {
				if err := ks.StoreUserKey(uk, pass); err != nil {
					return err
				}
				fmt.Fprintf(e.stdout, "%s %s\n", uk.ID, hex.EncodeToString(uk.Serialize()))
			}
			log.Info("User keys issued", "count", len(keys))
			return nil
		},
	}
}

func encryptCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "encrypt",
		Usage:     "encrypt a 256-bit message (decimal or 0x hex) to an identity",
		ArgsUsage: "<message>",
		Flags:     []cli.Flag{idFlag(), paramsFlag()},
		Action: func(cCtx *cli.Context) error {
			if cCtx.NArg() != 1 {
				return errors.New("encrypt: expected one message argument")
			}
			params, err := e.loadParams(cCtx)
			if err != nil {
				return err
			}
			m, err := ibe.ParseMessage(params.Curve(), cCtx.Args().First())
			if err != nil {
				return err
			}
			ct, err := ibe.Encrypt(params, cCtx.String("id"), m)
			if err != nil {
				return err
			}
			fmt.Fprintln(e.stdout, hex.EncodeToString(ct.Serialize()))
			return nil
		},
	}
}

func decryptCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "decrypt",
		Usage:     "decrypt a hex ciphertext with the key of an identity",
		ArgsUsage: "<ciphertext>",
		Flags:     []cli.Flag{idFlag(), keyFlag()},
		Action: func(cCtx *cli.Context) error {
			if cCtx.NArg() != 1 {
				return errors.New("decrypt: expected one ciphertext argument")
			}
			sk, err := e.loadUserKey(cCtx)
			if err != nil {
				return err
			}
			raw, err := decodeHex(cCtx.Args().First())
			if err != nil {
				return err
			}
			ct, err := ibe.DeserializeCiphertext(sk.K.Curve(), raw)
			if err != nil {
				return err
			}
			m, err := ibe.Decrypt(ct, sk)
			if err != nil {
				return err
			}
			x, err := ibe.MessageToUint256(m)
			if err != nil {
				return err
			}
			fmt.Fprintln(e.stdout, x.Dec())
			return nil
		},
	}
}

func sealCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "seal",
		Usage:     "encrypt bytes to an identity (argument text, or --in file)",
		ArgsUsage: "[<text>]",
		Flags: []cli.Flag{
			idFlag(), paramsFlag(), aadFlag(),
			&cli.StringFlag{Name: "in", Usage: "read the plaintext from a file ('-' for stdin)"},
		},
		Action: func(cCtx *cli.Context) error {
			plaintext, err := readInput(cCtx)
			if err != nil {
				return err
			}
			params, err := e.loadParams(cCtx)
			if err != nil {
				return err
			}
			sealed, err := ibe.Seal(params, cCtx.String("id"), plaintext, []byte(cCtx.String("aad")))
			if err != nil {
				return err
			}
			fmt.Fprintln(e.stdout, hex.EncodeToString(sealed))
			return nil
		},
	}
}

func openCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "decrypt a hex sealed message and write the plaintext",
		ArgsUsage: "<sealed>",
		Flags:     []cli.Flag{idFlag(), keyFlag(), aadFlag()},
		Action: func(cCtx *cli.Context) error {
			if cCtx.NArg() != 1 {
				return errors.New("open: expected one sealed message argument")
			}
			sk, err := e.loadUserKey(cCtx)
			if err != nil {
				return err
			}
			raw, err := decodeHex(cCtx.Args().First())
			if err != nil {
				return err
			}
			plaintext, err := ibe.Open(sk, raw, []byte(cCtx.String("aad")))
			if err != nil {
				return err
			}
			_, err = e.stdout.Write(plaintext)
			return err
		},
	}
}

func keysCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "keys",
		Usage: "list or delete issued user keys",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "print the identities holding a stored key",
				Action: func(*cli.Context) error {
					ks, err := e.openInitializedKeystore()
					if err != nil {
						return err
					}
					defer ks.Close()
					ids, err := ks.Identities()
					if err != nil {
						return err
					}
					for _, id := range ids {
						fmt.Fprintln(e.stdout, id)
					}
					n, err := ks.Issued()
					if err != nil {
						return err
					}
					log.Debug("Listed user keys", "count", n)
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "remove the stored keys of identities",
				ArgsUsage: "<id> [<id>...]",
				Action: func(cCtx *cli.Context) error {
					ids := cCtx.Args().Slice()
					if len(ids) == 0 {
						return errors.New("keys delete: at least one identity required")
					}
					pass, err := passphrase(cCtx)
					if err != nil {
						return err
					}
					ks, err := e.openInitializedKeystore()
					if err != nil {
						return err
					}
					defer ks.Close()
					// Only the holder of the master passphrase may delete.
					if _, err := ks.MasterKey(pass); err != nil {
						return err
					}
					var missing []string
					for _, id := range ids {
						ok, err := ks.HasUserKey(id)
						if err != nil {
							return err
						}
						if !ok {
							log.Warn("No stored key for identity", "id", id)
							missing = append(missing, id)
							continue
						}
						if err := ks.DeleteUserKey(id); err != nil {
							return err
						}
						fmt.Fprintf(e.stdout, "deleted %s\n", id)
					}
					if len(missing) > 0 {
						return fmt.Errorf("keys delete: %w: %s", keystore.ErrKeyNotFound, strings.Join(missing, ", "))
					}
					return nil
				},
			},
		},
	}
}

func curvesCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "curves",
		Usage: "list curve identifiers and their encodings",
		Action: func(*cli.Context) error {
			tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CURVE\tPAIRING\tFr\tG1\tG2\tGT")
			for _, id := range crypto.CurveIDs() {
				c, err := crypto.Init(id)
				if err != nil {
					fmt.Fprintf(tw, "%s\tunsupported\t\t\t\t\n", id)
					continue
				}
				if !c.HasPairing() {
					fmt.Fprintf(tw, "%s\tno\t%d\t%d\t-\t-\n", id, c.FrByteSize(), c.G1ByteSize())
					continue
				}
				fmt.Fprintf(tw, "%s\tyes\t%d\t%d\t%d\t%d\n", id, c.FrByteSize(), c.G1ByteSize(), c.G2ByteSize(), c.GTByteSize())
			}
			return tw.Flush()
		},
	}
}

// engine returns the engine of the configured curve.
func (e *env) engine() (*crypto.Engine, error) {
	id, err := crypto.ParseCurveID(e.cfg.Curve)
	if err != nil {
		return nil, err
	}
	c, err := crypto.Init(id)
	if err != nil {
		return nil, err
	}
	return c.Engine()
}

func (e *env) openKeystore() (*keystore.Keystore, error) {
	return keystore.Open(keystore.Config{
		ScryptN: e.cfg.ScryptN,
		Path:    e.cfg.KeystorePath(),
	})
}

// openInitializedKeystore opens the keystore and fails with
// keystore.ErrNotInitialized before setup has run.
func (e *env) openInitializedKeystore() (*keystore.Keystore, error) {
	ks, err := e.openKeystore()
	if err != nil {
		return nil, err
	}
	if _, err := ks.Engine(); err != nil {
		ks.Close()
		return nil, err
	}
	return ks, nil
}

// loadParams decodes --params, or reads the keystore when it is absent.
func (e *env) loadParams(cCtx *cli.Context) (*ibe.Params, error) {
	if s := cCtx.String("params"); s != "" {
		eng, err := e.engine()
		if err != nil {
			return nil, err
		}
		raw, err := decodeHex(s)
		if err != nil {
			return nil, err
		}
		return ibe.DeserializeParams(eng, raw)
	}
	ks, err := e.openKeystore()
	if err != nil {
		return nil, err
	}
	defer ks.Close()
	log.Debug("Reading params from keystore", "path", e.cfg.KeystorePath())
	return ks.Params()
}

// loadUserKey decodes --key for --id, or opens the keystore copy.
func (e *env) loadUserKey(cCtx *cli.Context) (*ibe.UserKey, error) {
	id := cCtx.String("id")
	if s := cCtx.String("key"); s != "" {
		eng, err := e.engine()
		if err != nil {
			return nil, err
		}
		raw, err := decodeHex(s)
		if err != nil {
			return nil, err
		}
		return ibe.DeserializeUserKey(eng, id, raw)
	}
	pass, err := passphrase(cCtx)
	if err != nil {
		return nil, err
	}
	ks, err := e.openKeystore()
	if err != nil {
		return nil, err
	}
	defer ks.Close()
	return ks.UserKey(id, pass)
}

func passphrase(cCtx *cli.Context) (string, error) {
	p := cCtx.String("passphrase")
	if p == "" {
		return "", errors.New("passphrase required (--passphrase or $IBE_PASSPHRASE)")
	}
	return p, nil
}

func readInput(cCtx *cli.Context) ([]byte, error) {
	switch in := cCtx.String("in"); {
	case in == "-":
		return io.ReadAll(cCtx.App.Reader)
	case in != "":
		return os.ReadFile(in)
	case cCtx.NArg() == 1:
		return []byte(cCtx.Args().First()), nil
	default:
		return nil, errors.New("seal: expected one text argument or --in")
	}
}

func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}
