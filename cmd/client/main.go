package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/client"
	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/geo"
	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/logging"
	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/model"
	"github.com/pliniogoncalves/PPD-comunicador-geografico/pkg/pubsub"
)

// identity is a login form result.
type identity struct {
	name   string
	lat    float64
	lon    float64
	radius float64
}

// presetFor returns the demo identity for a username, mirroring the
// canned locations used in non-interactive runs.
func presetFor(name string) identity {
	if name == "Alice" {
		return identity{name: name, lat: -3.71, lon: -38.54, radius: 5.0}
	}
	return identity{name: name, lat: -3.72, lon: -38.55, radius: 5.0}
}

func main() {
	settings := client.LoadSettings()

	// Settings file defaults; override with GEOCHAT_LOG_LEVEL / _FORMAT.
	level := settings.LogLevel
	if v := os.Getenv("GEOCHAT_LOG_LEVEL"); v != "" {
		level = v
	}
	format := settings.LogFormat
	if v := os.Getenv("GEOCHAT_LOG_FORMAT"); v != "" {
		format = v
	}
	_ = logging.Setup(logging.Options{
		Level:  level,
		Format: format,
		Output: os.Stderr,
	})

	stdin := bufio.NewScanner(os.Stdin)
	interactive := len(os.Args) < 2

	reg, err := client.DialRegistry(settings.RegistryAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot reach registry at %s: %v\n", settings.RegistryAddr, err)
		os.Exit(1)
	}

	engine := client.NewEngine(reg, pubsub.NewMQTT(settings.BrokerURL))
	engine.OnMessage = func(text string) {
		fmt.Printf("\r[msg] %s\n> ", text)
	}
	engine.OnPresence = func(ev model.PresenceEvent) {
		fmt.Printf("\r[presence] %s is %s\n> ", ev.Name, ev.Status)
	}
	engine.OnStateChange = func(s client.State) {
		fmt.Printf("\r[state] %s\n> ", s)
	}
	engine.OnError = func(err error) {
		fmt.Printf("\r[error] %v\n> ", err)
	}

	for {
		var id identity
		if interactive {
			id = loginForm(stdin)
		} else {
			id = presetFor(os.Args[1])
		}

		err := engine.Login(id.name, id.lat, id.lon, id.radius)
		if err == nil {
			break
		}
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		if !interactive {
			os.Exit(1)
		}
	}

	fmt.Printf("logged in as %s — type /help for commands\n", engine.Self().Name)
	console(stdin, engine)
}

// loginForm collects an identity from the terminal, re-prompting until
// every field validates.
func loginForm(stdin *bufio.Scanner) identity {
	for {
		name := prompt(stdin, "name: ")
		if err := model.ValidateName(name); err != nil {
			fmt.Println(err)
			continue
		}
		lat, err := promptFloat(stdin, "latitude: ")
		if err != nil {
			fmt.Println(err)
			continue
		}
		lon, err := promptFloat(stdin, "longitude: ")
		if err != nil {
			fmt.Println(err)
			continue
		}
		if err := model.ValidateCoordinates(lat, lon); err != nil {
			fmt.Println(err)
			continue
		}
		radius, err := promptFloat(stdin, "radius (km): ")
		if err != nil {
			fmt.Println(err)
			continue
		}
		if err := model.ValidateRadius(radius); err != nil {
			fmt.Println(err)
			continue
		}
		return identity{name: name, lat: lat, lon: lon, radius: radius}
	}
}

func prompt(stdin *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !stdin.Scan() {
		os.Exit(0)
	}
	return strings.TrimSpace(stdin.Text())
}

func promptFloat(stdin *bufio.Scanner, label string) (float64, error) {
	text := prompt(stdin, label)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", text)
	}
	return v, nil
}

// console runs the interactive command loop until /quit or EOF.
func console(stdin *bufio.Scanner, engine *client.Engine) {
	partner := ""

	fmt.Print("> ")
	for stdin.Scan() {
		line := strings.TrimSpace(stdin.Text())
		switch {
		case line == "":

		case line == "/help":
			fmt.Println("/users            list known users")
			fmt.Println("/to <name>        select conversation partner")
			fmt.Println("/status           toggle visible/invisible")
			fmt.Println("/loc <lat> <lon>  update location")
			fmt.Println("/radius <km>      update hearing radius")
			fmt.Println("/quit             leave")
			fmt.Println("anything else is sent to the selected partner")

		case line == "/users":
			self := engine.Self()
			for name, u := range engine.Roster() {
				if name == self.Name {
					continue
				}
				d := geo.Distance(self.Latitude, self.Longitude, u.Latitude, u.Longitude)
				fmt.Printf("%-20s %-8s %.1f km away (radius %.1f km)\n", name, u.Status, d, u.Radius)
			}

		case strings.HasPrefix(line, "/to "):
			partner = strings.TrimSpace(strings.TrimPrefix(line, "/to "))
			fmt.Printf("talking to %s\n", partner)

		case line == "/status":
			status, err := engine.Toggle()
			if err != nil {
				fmt.Printf("[error] %v\n", err)
			} else {
				fmt.Printf("you are now %s\n", status)
			}

		case strings.HasPrefix(line, "/loc "):
			fields := strings.Fields(strings.TrimPrefix(line, "/loc "))
			if len(fields) != 2 {
				fmt.Println("usage: /loc <lat> <lon>")
				break
			}
			lat, err1 := strconv.ParseFloat(fields[0], 64)
			lon, err2 := strconv.ParseFloat(fields[1], 64)
			if err1 != nil || err2 != nil {
				fmt.Println("usage: /loc <lat> <lon>")
				break
			}
			if err := engine.UpdateLocation(lat, lon); err != nil {
				fmt.Printf("[error] %v\n", err)
			}

		case strings.HasPrefix(line, "/radius "):
			radius, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "/radius ")), 64)
			if err != nil {
				fmt.Println("usage: /radius <km>")
				break
			}
			if err := engine.UpdateRadius(radius); err != nil {
				fmt.Printf("[error] %v\n", err)
			}

		case line == "/quit":
			// Cleanup runs in the background; the console exits at once.
			engine.Shutdown()
			return

		case strings.HasPrefix(line, "/"):
			fmt.Println("unknown command — try /help")

		default:
			if partner == "" {
				fmt.Println("select a partner first: /to <name>")
				break
			}
			route, err := engine.SendMessage(partner, line)
			if err != nil {
				fmt.Printf("[error] %v\n", err)
			} else {
				fmt.Printf("sent to %s via %s path\n", partner, route)
			}
		}
		fmt.Print("> ")
	}
	engine.Shutdown()
}
