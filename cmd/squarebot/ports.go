package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/radioactivebrix/squarebot/pkg/robot"
)

type PortsCommand struct {
	NoScan bool `long:"no-scan" description:"Only list ports, do not probe them for servos"`
}

func (c *PortsCommand) Execute(args []string) error {
	ports, err := serial.GetPortsList()
	if err != nil {
		return fmt.Errorf("list ports: %w", err)
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		return nil
	}
	sort.Strings(ports)

	cfg, _ := robot.LoadConfig()
	rows := make([][]string, 0, len(ports))
	for _, port := range ports {
		servos := "-"
		if !c.NoScan && !strings.Contains(port, "Bluetooth") {
			bus, found, err := scanPort(port)
			if bus != nil {
				bus.Close()
			}
			switch {
			case err != nil:
				servos = dimStyle.Render("no bus")
			case len(found) > 0:
				servos = describeServos(found, cfg)
			}
		}
		configured := ""
		if cfg != nil && cfg.Port == port {
			configured = successStyle.Render("✓")
		}
		rows = append(rows, []string{port, servos, configured})
	}

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tablePortStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Port", "Servos", "Configured").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 0:
				return tablePortStyle
			default:
				return tableCellStyle
			}
		})

	fmt.Println(t.Render())
	return nil
}

// describeServos lists servo IDs, naming the roles known from cfg.
func describeServos(servos []feetech.FoundServo, cfg *robot.Config) string {
	roles := map[int]string{}
	if cfg != nil {
		for role, sc := range map[string]robot.ServoConfig{
			"left wheel":       cfg.Wheels.Left,
			"right wheel":      cfg.Wheels.Right,
			"left attachment":  cfg.Attachments.Left,
			"right attachment": cfg.Attachments.Right,
		} {
			if sc.Configured() {
				roles[sc.ID] = role
			}
		}
	}

	parts := make([]string, 0, len(servos))
	for _, s := range servos {
		part := "#" + strconv.Itoa(s.ID)
		if role, ok := roles[s.ID]; ok {
			part += " " + role
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}
