package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/radioactivebrix/squarebot/pkg/robot"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// maxScanID is the highest servo ID looked for on a bus.
const maxScanID = 8

// Servo roles offered during setup.
const (
	roleLeftWheel       = "left_wheel"
	roleRightWheel      = "right_wheel"
	roleLeftAttachment  = "left_attachment"
	roleRightAttachment = "right_attachment"
	roleSkip            = "skip"
)

var roleLabels = map[string]string{
	roleLeftWheel:       "Left wheel",
	roleRightWheel:      "Right wheel",
	roleLeftAttachment:  "Left attachment motor",
	roleRightAttachment: "Right attachment motor",
}

type SetupCommand struct {
	WheelDiameter float64 `long:"wheel-diameter" default:"56" description:"Wheel diameter in mm"`
	AxleTrack     float64 `long:"axle-track" default:"80" description:"Distance between the wheels in mm"`
}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Squarebot Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━"))
	fmt.Println()

	// Step 1: Find the servo bus
	bus, err := chooseBus()
	if err != nil {
		return err
	}
	defer bus.bus.Close()

	// Step 2: Identify each servo
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Identifying servos ━━━"))
	cfg, err := robot.LoadConfig()
	if err != nil {
		cfg = robot.DefaultConfig()
	}
	cfg.Port = bus.port
	cfg.Wheels = robot.PairConfig{}
	cfg.Attachments = robot.PairConfig{}
	cfg.Specs = robot.Specs{WheelDiameterMM: c.WheelDiameter, AxleTrackMM: c.AxleTrack}

	if err := identifyServos(bus, cfg); err != nil {
		return err
	}

	// Check what we found
	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━"))
	for _, side := range robot.AllSides() {
		if !cfg.Wheels.Side(side).Configured() {
			fmt.Printf("%s wheel not identified.\n", capitalize(string(side)))
			return &robot.MissingHardwareError{Component: string(side) + "_wheel", Port: bus.port}
		}
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Println(successStyle.Render("Servos identified:"))
	fmt.Printf("  Left wheel:  #%d%s\n", cfg.Wheels.Left.ID, invertedNote(cfg.Wheels.Left))
	fmt.Printf("  Right wheel: #%d%s\n", cfg.Wheels.Right.ID, invertedNote(cfg.Wheels.Right))
	for _, side := range robot.AllSides() {
		if sc := cfg.Attachments.Side(side); sc.Configured() {
			fmt.Printf("  %s attachment: #%d\n", capitalize(string(side)), sc.ID)
		}
	}
	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", robot.DefaultConfigFile)
	fmt.Println()
	fmt.Println("Calibrate the line sensors with: " + headerStyle.Render("squarebot calibrate"))

	return nil
}

// capitalize upper-cases the first letter of an ASCII word.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func invertedNote(sc robot.ServoConfig) string {
	if sc.Inverted {
		return dimStyle.Render(" (inverted)")
	}
	return ""
}

type busInfo struct {
	port   string
	servos []feetech.FoundServo
	bus    *feetech.Bus
}

// findBuses opens every serial port and keeps the ones with servos on them.
func findBuses() ([]busInfo, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list ports: %w", err)
	}

	var buses []busInfo
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}
		bus, servos, err := scanPort(port)
		if err != nil || len(servos) == 0 {
			if bus != nil {
				bus.Close()
			}
			continue
		}
		buses = append(buses, busInfo{port: port, servos: servos, bus: bus})
	}
	return buses, nil
}

// scanPort opens port as a feetech bus and scans it for servos.
func scanPort(port string) (*feetech.Bus, []feetech.FoundServo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	servos, err := bus.Scan(ctx, 1, maxScanID)
	if err != nil {
		return bus, nil, err
	}
	return bus, servos, nil
}

func chooseBus() (busInfo, error) {
	fmt.Println("Scanning for servo buses...")
	buses, err := findBuses()
	if err != nil {
		return busInfo{}, err
	}
	if len(buses) == 0 {
		fmt.Println("No servos found.")
		fmt.Println("Make sure the robot is connected and powered on.")
		return busInfo{}, &robot.MissingHardwareError{Component: "servo_bus"}
	}
	for _, b := range buses {
		fmt.Printf("  Found %d servo(s) on %s\n", len(b.servos), b.port)
	}
	if len(buses) == 1 {
		return buses[0], nil
	}

	options := make([]huh.Option[string], 0, len(buses))
	for _, b := range buses {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%d servos)", b.port, len(b.servos)), b.port))
	}
	var port string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which bus is the robot?").
				Options(options...).
				Value(&port),
		),
	)
	if err := form.Run(); err != nil {
		closeBuses(buses, "")
		return busInfo{}, fmt.Errorf("setup aborted: %w", err)
	}

	closeBuses(buses, port)
	for _, b := range buses {
		if b.port == port {
			return b, nil
		}
	}
	return busInfo{}, errors.New("no bus selected")
}

func closeBuses(buses []busInfo, keep string) {
	for _, b := range buses {
		if b.port != keep {
			b.bus.Close()
		}
	}
}

// identifyServos wiggles each servo and asks which role it plays.
func identifyServos(bus busInfo, cfg *robot.Config) error {
	remaining := []string{roleLeftWheel, roleRightWheel, roleLeftAttachment, roleRightAttachment}

	for _, fs := range bus.servos {
		if len(remaining) == 0 {
			break
		}
		servo := feetech.NewServo(bus.bus, fs.ID, fs.Model)
		if err := wiggle(servo); err != nil {
			fmt.Printf("  Servo #%d: %v\n", fs.ID, err)
			continue
		}

		options := make([]huh.Option[string], 0, len(remaining)+1)
		for _, role := range remaining {
			options = append(options, huh.NewOption(roleLabels[role], role))
		}
		options = append(options, huh.NewOption("Skip this servo", roleSkip))

		var role string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title(fmt.Sprintf("What is servo #%d?", fs.ID)).
					Description("The servo that just wiggled").
					Options(options...).
					Value(&role),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("setup aborted: %w", err)
		}
		if role == roleSkip {
			continue
		}

		sc := robot.ServoConfig{ID: fs.ID}
		if role == roleLeftWheel || role == roleRightWheel {
			// Mirrored mounting is the usual case for the right wheel.
			sc.Inverted = role == roleRightWheel
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Is the %s mounted mirrored?", strings.ToLower(roleLabels[role]))).
						Description("Mirrored servos turn backward for a positive position change").
						Affirmative("Yes").
						Negative("No").
						Value(&sc.Inverted),
				),
			)
			if err := form.Run(); err != nil {
				return fmt.Errorf("setup aborted: %w", err)
			}
		}
		assignRole(cfg, role, sc)
		remaining = removeRole(remaining, role)
	}
	return nil
}

func assignRole(cfg *robot.Config, role string, sc robot.ServoConfig) {
	switch role {
	case roleLeftWheel:
		cfg.Wheels.Left = sc
	case roleRightWheel:
		cfg.Wheels.Right = sc
	case roleLeftAttachment:
		cfg.Attachments.Left = sc
	case roleRightAttachment:
		cfg.Attachments.Right = sc
	}
}

func removeRole(roles []string, role string) []string {
	out := roles[:0:0]
	for _, r := range roles {
		if r != role {
			out = append(out, r)
		}
	}
	return out
}

// wiggle moves a servo gently back and forth so the user can spot it.
func wiggle(servo *feetech.Servo) error {
	ctx := context.Background()

	originalPos, err := servo.Position(ctx)
	if err != nil {
		return fmt.Errorf("read position: %w", err)
	}
	if err := servo.Enable(ctx); err != nil {
		return fmt.Errorf("enable servo: %w", err)
	}
	defer servo.Disable(ctx)

	wiggleAmount := 200
	moveTimeMs := 400
	for _, pos := range []int{originalPos + wiggleAmount, originalPos - wiggleAmount, originalPos} {
		servo.SetPositionWithTime(ctx, pos, moveTimeMs)
		time.Sleep(time.Duration(moveTimeMs+100) * time.Millisecond)
	}
	return nil
}

func waitForUser(prompt string) error {
	fmt.Println(prompt)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("").
				Affirmative("Continue").
				Negative("").
				Value(new(bool)),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("aborted: %w", err)
	}
	return nil
}
