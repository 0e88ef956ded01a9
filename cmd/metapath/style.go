package main

import (
	"charm.land/lipgloss/v2"
)

var (
	nameStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	flagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mutedStyle = lipgloss.NewStyle().Faint(true)
	markStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
