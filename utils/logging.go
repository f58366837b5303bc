package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// SetupLogging initializes logging to a dated file under logDir while
// keeping a copy on stdout
func SetupLogging(logDir string) *os.File {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	file, err := os.OpenFile(logFileName(logDir), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}

	log.SetOutput(io.MultiWriter(os.Stdout, file))
	log.SetFlags(log.Ldate | log.Ltime)

	log.Printf("Logging to file: %s", file.Name())

	go monitorLogRotation(logDir, file)

	return file
}

// logFileName builds the day-month-year log file path for the current date
func logFileName(logDir string) string {
	now := time.Now()
	return fmt.Sprintf("%s/%02d-%02d-%d.log", logDir, now.Day(), now.Month(), now.Year())
}

// monitorLogRotation rotates the log file at midnight
func monitorLogRotation(logDir string, logFile *os.File) {
	for {
		now := time.Now()
		next := now.Add(24 * time.Hour)
		next = time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, next.Location())

		time.Sleep(next.Sub(now))

		if logFile != nil {
			logFile.Close()
		}

		file, err := os.OpenFile(logFileName(logDir), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			stdLog := log.New(os.Stdout, "", log.Ldate|log.Ltime)
			stdLog.Printf("Failed to rotate log file: %v", err)
			continue
		}

		logFile = file
		log.SetOutput(io.MultiWriter(os.Stdout, file))
		log.Printf("Rotated log file to: %s", file.Name())
	}
}
