package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
)

func printScripts() {
	fmt.Println("Scripts:")
	for key := range scriptMap {
		fmt.Println("\t" + key)
	}
}

func main() {
	flag.Parse()

	script := flag.Arg(0)
	fn, ok := scriptMap[script]
	if !ok {
		fmt.Printf(
			"you must specify a valid script, '%s' is not a valid script.\n",
			script,
		)
		printScripts()
		os.Exit(1)
	}

	fn()
}

func cmd(name string, args ...string) {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	fullCmd := name
	for _, a := range args {
		fullCmd += " "
		fullCmd += a
	}

	fmt.Printf("$ %s\n", fullCmd)
	err := cmd.Run()
	if err != nil {
		os.Exit(1)
	}
}

var scriptMap = map[string]func(){
	"dev:apply_db_schema": migrateDb,
	"dev:daemon":          runDaemon,
	"test:live":           liveTests,
	"test:containers":     containerTests,
}

func runDaemon() {
	cmd("go", "run", "./cmd/sejongauthd", "-config", "dev/.state/sejongauthd.json5")
}

// liveTests logs into the real portal with the credentials in
// dev/.state/sejong_config.json5.
func liveTests() {
	cmd("go", "test", "-v", "-count=1", "-run", "TestLivePortal", "./lib/sejong/engine")
}

func containerTests() {
	os.Setenv("SEJONGAUTH_CONTAINER_TESTS", "1")
	cmd("go", "test", "-v", "-count=1", "-run", "TestStoreLibsqlServer", "./lib/sejong/store")
}

// migrateDb brings the dev snapshot database up to date with the store
// schema, it needs atlas installed.
func migrateDb() {
	cmd(
		"atlas", "schema", "apply",
		"-u", "sqlite://dev/.state/snapshots.db",
		"--to", "file://lib/sejong/store/db/schema.sql",
		"--dev-url", "sqlite://dev?mode=memory",
	)
}
