package ports

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"go.bug.st/serial"
)

// DefaultBaudRate is what most touch controller firmwares print their event log at.
const DefaultBaudRate = 115200

// Open connects to a touch controller on a serial port.
func Open(path string, baudRate int) (io.ReadCloser, error) {
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: baudRate,
	})
	if err != nil {
		return nil, fmt.Errorf("could not open serial port %s: %w", path, err)
	}

	// Touch controllers go quiet for as long as nobody touches them
	if err := port.SetReadTimeout(serial.NoTimeout); err != nil {
		port.Close()

		return nil, fmt.Errorf("could not set read timeout on %s: %w", path, err)
	}

	return port, nil
}

// ReadFile streams the lines of r. The channel is closed at the end of input.
func ReadFile(r io.Reader) <-chan string {
	return ReadFiles(r)
}

// ReadFiles streams the lines of all readers at the same time, in no particular order between
// readers. The channel is closed once every reader is exhausted.
func ReadFiles(readers ...io.Reader) <-chan string {
	out := make(chan string)

	var wg sync.WaitGroup

	for _, r := range readers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			scanner := bufio.NewScanner(r)
			for scanner.Scan() {
				out <- scanner.Text()
			}

			if err := scanner.Err(); err != nil {
				slog.Error("Stopped reading input", "error", err)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// ReadTwoFiles reads from two files at the same time line-by-line.
func ReadTwoFiles(f1, f2 io.Reader) <-chan string {
	return ReadFiles(f1, f2)
}

// OpenFiles opens every path as a serial port and streams their lines together.
func OpenFiles(baudRate int, paths ...string) (<-chan string, func(), error) {
	ports := make([]io.ReadCloser, 0, len(paths))

	closer := func() {
		for _, p := range ports {
			if err := p.Close(); err != nil {
				slog.Error("Could not close port", "error", err)
			}
		}
	}

	readers := make([]io.Reader, 0, len(paths))

	for _, path := range paths {
		port, err := Open(path, baudRate)
		if err != nil {
			closer()

			return nil, func() {}, err
		}

		ports = append(ports, port)
		readers = append(readers, port)
	}

	return ReadFiles(readers...), closer, nil
}

// LooksLikeTouchDevice reports whether path names a USB serial device, which is how touch
// controllers show up.
func LooksLikeTouchDevice(path string) bool {
	if filepath.Dir(path) != "/dev" {
		return false
	}

	name := filepath.Base(path)

	for _, prefix := range []string{"tty.usbmodem", "tty.usbserial", "ttyACM", "ttyUSB", "cu.usbmodem"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}

func GetAvailableDevices() ([]string, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("could not get list of serial ports: %w", err)
	}

	result := make([]string, 0)

	for _, n := range names {
		if LooksLikeTouchDevice(n) {
			result = append(result, n)
		}
	}

	return result, nil
}
