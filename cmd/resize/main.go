// Command resize drives the resizer CORE from a command script (cmdscript)
// against a JSON design description (netlistio), the same flag+viper+
// structured-main shape cmd/sart's main follows.
package main

import (
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"sart/cmdscript"
	"sart/config"
	"sart/derate"
	"sart/jobstore"
	"sart/netlistio"
	"sart/netlistsvc"
	"sart/resizer"
	"sart/statusserver"
	"sart/steiner"
	"sart/sysreport"
	"sart/timer"
)

func main() {
	var designPath, scriptPath, configPath, logp string
	var debug bool

	flag.StringVar(&designPath, "design", "", "path to JSON design description, liberty cells + netlist (req.)")
	flag.StringVar(&scriptPath, "script", "", "path to a cmdscript command file (req.)")
	flag.StringVar(&configPath, "config", "", "path to a config file (optional; without it viper reads ./.sart.yaml if present; SART_* env always applies)")
	flag.StringVar(&logp, "log", "", "path to file where log messages should be redirected")
	flag.BoolVar(&debug, "debug", false, "enable debug mode")
	flag.Parse()

	log.SetFlags(0)
	if debug {
		log.SetFlags(log.Lshortfile)
	}

	if designPath == "" || scriptPath == "" {
		flag.PrintDefaults()
		log.Fatal("Insufficient arguments")
	}

	if logw := openLogWriter(logp); logw != nil {
		log.SetOutput(logw)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("resize: .env: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	report := sysreport.Start()
	defer report.Finish()

	store, err := jobstore.Open(cfg.MongoServer)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	status, err := statusserver.Listen(cfg.StatusAddr)
	if err != nil {
		log.Fatal(err)
	}
	defer status.Close()

	designFile, err := os.Open(designPath)
	if err != nil {
		log.Fatal(err)
	}
	db, libs, err := netlistio.Load(designFile)
	designFile.Close()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.DontUsePatternsPath != "" {
		patterns, err := config.LoadDontUsePatterns(cfg.DontUsePatternsPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg.DontUse = append(cfg.DontUse, patterns.Names(allCellNames(libs))...)
	}

	tm := timer.NewFake(db)
	st := &steiner.Builder{NL: db}
	r := resizer.New(db, tm, st)

	r.SetWireRC(timer.WireRC{
		WireRes:    cfg.WireRes,
		WireCap:    cfg.WireCap,
		WireClkRes: cfg.WireClkRes,
		WireClkCap: cfg.WireClkCap,
	}, timer.Corner{Name: "typical"})
	r.SetMaxUtilization(cfg.MaxUtilization)
	r.SetDontUse(cfg.DontUse)
	r.SetSeparation(cfg.Separation)
	r.SetMaxWireLength(cfg.MaxWireLength)
	r.SetAllowSetupViolations(cfg.AllowSetupViolations)

	if cfg.WireDeratingPath != "" {
		deratingFile, err := os.Open(cfg.WireDeratingPath)
		if err != nil {
			log.Fatal(err)
		}
		table, err := derate.Load(deratingFile)
		deratingFile.Close()
		if err != nil {
			log.Fatal(err)
		}
		r.SetWireDerating(table)
	}

	scriptFile, err := os.Open(scriptPath)
	if err != nil {
		log.Fatal(err)
	}
	cmds, err := cmdscript.Parse(scriptFile)
	scriptFile.Close()
	if err != nil {
		log.Fatal(err)
	}

	runner := &cmdscript.Runner{R: r, Libs: libs}
	for _, cmd := range cmds {
		started := time.Now()
		if err := runner.Run([]cmdscript.Command{cmd}); err != nil {
			log.Fatal(err)
		}
		status.Snapshot(cmd.Name, r.Counters)
		store.Record(cmd.Name, started, r.InsertedBufferCount, r.ResizeCount, r.DesignArea, nil)
	}

	log.Printf("Done. %d instances resized, %d buffers inserted.", r.ResizeCount, r.InsertedBufferCount)
}

func openLogWriter(path string) io.Writer {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	return f
}

func allCellNames(libs [][]*netlistsvc.Cell) []string {
	var names []string
	for _, lib := range libs {
		for _, cell := range lib {
			names = append(names, cell.Name)
		}
	}
	return names
}
