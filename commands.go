package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ebfe/scard"
	"golang.org/x/term"

	"github.com/tomkp/go-emv/internal/cliutil"
	"github.com/tomkp/go-emv/pkg/emv"
	"github.com/tomkp/go-emv/pkg/iso7816"
	"github.com/tomkp/go-emv/pkg/tlv"
)

type command struct {
	help string
	run  func(env *cliEnv, args []string) error
}

var commands = map[string]command{
	"readers":     {help: "list PC/SC readers", run: cmdReaders},
	"wait":        {help: "wait for a card to be presented, then print its ATR", run: cmdWait},
	"info":        {help: "connect and print the reader name and card ATR", run: cmdInfo},
	"select-pse":  {help: "select the Payment System Environment (contact or contactless)", run: cmdSelectPSE},
	"select-app":  {help: "select-app <aid hex>: select an application by AID", run: cmdSelectApp},
	"list-apps":   {help: "discover candidate applications via PSE/PPSE", run: cmdListApps},
	"read-record": {help: "read-record <sfi> <record>: read one record", run: cmdReadRecord},
	"get-data":    {help: "get-data <tag hex>: GET DATA for a single tag", run: cmdGetData},
	"verify-pin":  {help: "verify the cardholder PIN (prompts, input hidden)", run: cmdVerifyPIN},
	"dump":        {help: "discover applications and select each one, printing its FCI", run: cmdDump},
	"shell":       {help: "interactive command prompt", run: cmdShell},
}

var commandOrder = []string{
	"readers", "wait", "info", "select-pse", "select-app", "list-apps",
	"read-record", "get-data", "verify-pin", "dump", "shell",
}

func cmdReaders(env *cliEnv, _ []string) error {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return fmt.Errorf("establish PC/SC context: %w", err)
	}
	defer ctx.Release()

	readers, err := ctx.ListReaders()
	if err != nil {
		return fmt.Errorf("list readers: %w", err)
	}

	if env.format == cliutil.FormatJSON {
		return cliutil.RenderJSON(env.stdout, readers)
	}
	if len(readers) == 0 {
		fmt.Fprintln(env.stdout, "no readers found")
		return nil
	}
	for i, r := range readers {
		fmt.Fprintf(env.stdout, "[%d] %s\n", i, r)
	}
	return nil
}

func cmdWait(env *cliEnv, _ []string) error {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return fmt.Errorf("establish PC/SC context: %w", err)
	}
	defer ctx.Release()

	readerName, err := resolveReaderName(ctx, env.reader)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.stderr, "waiting for a card on %q...\n", readerName)
	states := []scard.ReaderState{{Reader: readerName, CurrentState: scard.StateUnaware}}
	for {
		if err := ctx.GetStatusChange(states, time.Second); err != nil && err != scard.ErrTimeout {
			return fmt.Errorf("get status change: %w", err)
		}
		if states[0].EventState&scard.StatePresent != 0 {
			card, err := ctx.Connect(readerName, scard.ShareShared, scard.ProtocolT0|scard.ProtocolT1)
			if err != nil {
				return fmt.Errorf("connect to %q: %w", readerName, err)
			}
			defer card.Disconnect(scard.LeaveCard)
			status, err := card.Status()
			if err != nil {
				return fmt.Errorf("card status: %w", err)
			}
			return renderATR(env, status.Atr)
		}
		states[0].CurrentState = states[0].EventState
	}
}

func cmdInfo(env *cliEnv, _ []string) error {
	card, release, err := connect(env)
	if err != nil {
		return err
	}
	defer release()

	status, err := card.Status()
	if err != nil {
		return fmt.Errorf("card status: %w", err)
	}
	return renderATR(env, status.Atr)
}

func renderATR(env *cliEnv, atr []byte) error {
	if env.format == cliutil.FormatJSON {
		return cliutil.RenderJSON(env.stdout, map[string]string{"atr": strings.ToUpper(hex.EncodeToString(atr))})
	}
	fmt.Fprintf(env.stdout, "ATR: % X\n", atr)
	return nil
}

func cmdSelectPSE(env *cliEnv, _ []string) error {
	session, release, err := newEMVSession(env)
	if err != nil {
		return err
	}
	defer release()

	fci, err := session.SelectPPSE()
	if err != nil {
		fci, err = session.SelectPSE()
		if err != nil {
			printSelectTrace(env, session)
			return fmt.Errorf("select PSE/PPSE: %w", err)
		}
	}
	printSelectTrace(env, session)
	return renderFCI(env, fci)
}

func cmdSelectApp(env *cliEnv, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: select-app <aid hex>")
	}
	aid, err := hex.DecodeString(strings.ReplaceAll(args[0], " ", ""))
	if err != nil {
		return fmt.Errorf("invalid AID hex: %w", err)
	}

	session, release, err := newEMVSession(env)
	if err != nil {
		return err
	}
	defer release()

	fci, err := session.SelectApplication(aid)
	printSelectTrace(env, session)
	if err != nil {
		return err
	}
	return renderFCI(env, fci)
}

// printSelectTrace writes a byte-level SELECT report to stderr when
// --verbose is set, reusing the iso7816 package's own trace-report format.
func printSelectTrace(env *cliEnv, session *emv.EmvSession) {
	if !env.verbose || session.LastTrace == nil {
		return
	}
	result, err := iso7816.NewSelectResult(session.LastTrace)
	if err != nil {
		return
	}
	fmt.Fprintln(env.stderr, result.Describe())
}

func renderFCI(env *cliEnv, fci *emv.FCI) error {
	if env.format == cliutil.FormatJSON {
		return cliutil.RenderJSON(env.stdout, fci)
	}
	fmt.Fprintln(env.stdout, fci.Describe())
	return nil
}

func cmdListApps(env *cliEnv, _ []string) error {
	session, release, err := newEMVSession(env)
	if err != nil {
		return err
	}
	defer release()

	result, err := session.DiscoverApplications()
	if err != nil {
		return err
	}

	if env.format == cliutil.FormatJSON {
		return cliutil.RenderJSON(env.stdout, result)
	}
	fmt.Fprintln(env.stdout, cliutil.DescribeDiscovery(result))
	return nil
}

func cmdReadRecord(env *cliEnv, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: read-record <sfi> <record>")
	}
	sfi, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil {
		return fmt.Errorf("invalid sfi: %w", err)
	}
	record, err := strconv.ParseUint(args[1], 10, 8)
	if err != nil {
		return fmt.Errorf("invalid record number: %w", err)
	}

	session, release, err := newEMVSession(env)
	if err != nil {
		return err
	}
	defer release()

	data, err := session.ReadRecord(byte(sfi), byte(record))
	printReadRecordTrace(env, session)
	if err != nil {
		return err
	}

	if env.format == cliutil.FormatJSON {
		return cliutil.RenderJSON(env.stdout, map[string]string{"data": strings.ToUpper(hex.EncodeToString(data))})
	}
	fmt.Fprintf(env.stdout, "%X\n", data)
	return nil
}

// printReadRecordTrace writes a byte-level READ RECORD report to stderr
// when --verbose is set, mirroring printSelectTrace.
func printReadRecordTrace(env *cliEnv, session *emv.EmvSession) {
	if !env.verbose || session.LastTrace == nil {
		return
	}
	result, err := iso7816.NewReadRecordResult(session.LastTrace)
	if err != nil {
		return
	}
	fmt.Fprintln(env.stderr, result.Describe())
}

func cmdGetData(env *cliEnv, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: get-data <tag hex>")
	}
	tag, err := parseTag(args[0])
	if err != nil {
		return err
	}

	session, release, err := newEMVSession(env)
	if err != nil {
		return err
	}
	defer release()

	data, err := session.GetData(tag)
	if err != nil {
		return err
	}

	if env.format == cliutil.FormatJSON {
		return cliutil.RenderJSON(env.stdout, map[string]string{"data": strings.ToUpper(hex.EncodeToString(data))})
	}
	fmt.Fprintf(env.stdout, "%X\n", data)
	return nil
}

func cmdVerifyPIN(env *cliEnv, _ []string) error {
	fmt.Fprint(env.stderr, "PIN: ")
	pinBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(env.stderr)
	if err != nil {
		return fmt.Errorf("read PIN: %w", err)
	}

	session, release, err := newEMVSession(env)
	if err != nil {
		return err
	}
	defer release()

	if err := session.VerifyPIN(string(pinBytes)); err != nil {
		return err
	}
	fmt.Fprintln(env.stdout, "PIN verified")
	return nil
}

func cmdDump(env *cliEnv, _ []string) error {
	session, release, err := newEMVSession(env)
	if err != nil {
		return err
	}
	defer release()

	result, err := session.DiscoverApplications()
	if err != nil {
		return err
	}

	type appDump struct {
		AID string   `json:"aid"`
		FCI *emv.FCI `json:"fci,omitempty"`
	}
	var dumps []appDump

	for _, app := range result.Apps {
		fci, err := session.SelectApplication(app.AID)
		entry := appDump{AID: strings.ToUpper(hex.EncodeToString(app.AID))}
		if err == nil {
			entry.FCI = fci
		}
		dumps = append(dumps, entry)

		if env.format != cliutil.FormatJSON {
			fmt.Fprintf(env.stdout, "--- AID %X ---\n", app.AID)
			if err != nil {
				fmt.Fprintf(env.stdout, "select failed: %v\n", err)
				continue
			}
			fmt.Fprintln(env.stdout, fci.Describe())
		}
	}

	if env.format == cliutil.FormatJSON {
		return cliutil.RenderJSON(env.stdout, dumps)
	}
	return nil
}

func cmdShell(env *cliEnv, _ []string) error {
	fmt.Fprintln(env.stdout, "emvctl shell. Commands: select-pse, select-app <aid>, list-apps, read-record <sfi> <rec>, get-data <tag>, verify-pin, dump, exit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(env.stdout, "emvctl> ")
		if !scanner.Scan() {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		name, args := fields[0], fields[1:]
		if name == "exit" || name == "quit" {
			return nil
		}
		cmd, ok := commands[name]
		if !ok {
			fmt.Fprintf(env.stdout, "unknown command %q\n", name)
			continue
		}
		if err := cmd.run(env, args); err != nil {
			fmt.Fprintf(env.stdout, "error: %v\n", err)
		}
	}
}

func newEMVSession(env *cliEnv) (*emv.EmvSession, func(), error) {
	card, release, err := connect(env)
	if err != nil {
		return nil, nil, err
	}

	opts := emv.SessionOptions{}
	if env.config != nil {
		cla, err := iso7816.NewClass(env.config.Session.Class)
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("config.session.class: %w", err)
		}
		opts.Class = cla
		opts.Lenient = env.config.Session.Lenient
	}

	return emv.NewSession(card, opts), release, nil
}

func parseTag(s string) (tlv.TagNumber, error) {
	return tlv.ParseTagNumber(strings.ReplaceAll(s, " ", ""))
}
