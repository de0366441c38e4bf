package ports

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"sync"
	"time"

	"go.bug.st/serial"
)

// DeviceReader streams the lines of one device until it goes away.
type DeviceReader interface {
	Channel() <-chan string
	Close() error
}

type DeviceOpener interface {
	Open(devicePath string) (DeviceReader, error)
}

// RealDeviceOpener opens serial ports.
type RealDeviceOpener struct {
	BaudRate int
}

func (o *RealDeviceOpener) Open(devicePath string) (DeviceReader, error) {
	port, err := Open(devicePath, o.BaudRate)
	if err != nil {
		return nil, err
	}

	return NewStreamReader(port), nil
}

// StreamReader is a DeviceReader over any stream.
type StreamReader struct {
	stream io.ReadCloser
	ch     chan string
	once   sync.Once
}

func NewStreamReader(stream io.ReadCloser) *StreamReader {
	r := &StreamReader{
		stream: stream,
		ch:     make(chan string),
	}

	go func() {
		defer close(r.ch)

		scanner := bufio.NewScanner(stream)
		for scanner.Scan() {
			r.ch <- scanner.Text()
		}
	}()

	return r
}

func (r *StreamReader) Channel() <-chan string {
	return r.ch
}

func (r *StreamReader) Close() error {
	var err error

	r.once.Do(func() {
		err = r.stream.Close()
	})

	return err
}

// MonitoringDeviceReader polls for touch devices and merges the lines of all of them.
type MonitoringDeviceReader struct {
	pathToLookup string

	devicesList map[string]DeviceReader
	lock        sync.RWMutex

	opener DeviceOpener

	pollingInterval time.Duration
}

func DefaultMonitoringDeviceReader(baudRate int) *MonitoringDeviceReader {
	return NewMonitoringDeviceReader("/dev/", &RealDeviceOpener{BaudRate: baudRate})
}

func NewMonitoringDeviceReader(pathToLookup string, opener DeviceOpener) *MonitoringDeviceReader {
	return &MonitoringDeviceReader{
		pathToLookup:    pathToLookup,
		devicesList:     make(map[string]DeviceReader),
		lock:            sync.RWMutex{},
		opener:          opener,
		pollingInterval: 5 * time.Second,
	}
}

func (r *MonitoringDeviceReader) Close() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for i, device := range r.devicesList {
		if err := device.Close(); err != nil {
			return fmt.Errorf("error closing device %s: %w", i, err)
		}
	}

	return nil
}

// Devices lists the devices currently being read.
func (r *MonitoringDeviceReader) Devices() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	names := make([]string, 0, len(r.devicesList))
	for name := range r.devicesList {
		names = append(names, name)
	}

	return names
}

func (r *MonitoringDeviceReader) CloseDevice(devicePath string) error {
	slog.Info("Closing device", "path", devicePath)

	r.lock.Lock()
	defer r.lock.Unlock()

	if device, exists := r.devicesList[devicePath]; exists {
		if err := device.Close(); err != nil {
			return fmt.Errorf("error closing device %s: %w", devicePath, err)
		}

		delete(r.devicesList, devicePath)
		slog.Info("Device closed and removed from list", "path", devicePath)
	} else {
		slog.Info("Device not found in list", "path", devicePath)
	}

	return nil
}

func (r *MonitoringDeviceReader) AddDevice(devicePath string, out chan<- string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, exists := r.devicesList[devicePath]; exists {
		slog.Debug("Device already exists, skipping", "path", devicePath)

		return nil
	}

	device, err := r.opener.Open(devicePath)
	if err != nil {
		return fmt.Errorf("error opening device %s: %w", devicePath, err)
	}

	r.devicesList[devicePath] = device

	go func() {
		slog.Info("Device loop started", "path", devicePath)

		for line := range device.Channel() {
			out <- line
		}

		slog.Info("Device closed", "path", devicePath)

		err := r.CloseDevice(devicePath)
		if err != nil {
			slog.Error("Could not close device", "path", devicePath, "error", err)
		}
	}()

	return nil
}

func (r *MonitoringDeviceReader) FindDevices() ([]string, error) {
	slog.Debug("Finding devices in path:", "pathToLookup", r.pathToLookup)

	serialDevices, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("could not get list of serial ports: %w", err)
	}

	slog.Debug("serial devices", "names", serialDevices)

	entries, err := os.ReadDir(r.pathToLookup)
	if err != nil {
		return nil, fmt.Errorf("error reading directory %s: %w", r.pathToLookup, err)
	}

	newDevices := make(map[string]bool)

	for _, devicePath := range serialDevices {
		if r.shouldOpenDevice(devicePath) {
			newDevices[devicePath] = true
		}
	}

	for _, entry := range entries {
		shouldOpen, devicePath := r.shouldOpenFile(entry)
		if !shouldOpen {
			continue
		}

		slog.Info("Found device", "path", devicePath)

		newDevices[devicePath] = true
	}

	keys := make([]string, 0, len(newDevices))
	for k := range newDevices {
		keys = append(keys, k)
	}

	return keys, nil
}

// Channel starts polling. Lines of every device found are merged into the returned channel until
// done is closed.
func (r *MonitoringDeviceReader) Channel(done <-chan struct{}) <-chan string {
	slog.Info("Starting monitoring", "path", r.pathToLookup)

	outputChan := make(chan string, 5)

	go func() {
		defer slog.Info("End monitoring", "path", r.pathToLookup)

		ticker := time.NewTicker(r.pollingInterval)
		defer ticker.Stop()

		for {
			r.poll(outputChan)

			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()

	return outputChan
}

func (r *MonitoringDeviceReader) poll(out chan<- string) {
	devices, err := r.FindDevices()
	if err != nil {
		slog.Error("Error finding devices", "error", err)

		return
	}

	for _, devicePath := range devices {
		slog.Info("Processing device", "path", devicePath)

		err := r.AddDevice(devicePath, out)
		if err != nil {
			slog.Error("Could not add device", "path", devicePath, "error", err)
		}
	}
}

func (r *MonitoringDeviceReader) shouldOpenFile(entry os.DirEntry) (bool, string) {
	if entry.IsDir() || entry.Type()&os.ModeDevice == 0 {
		return false, ""
	}

	devicePath := path.Join(r.pathToLookup, entry.Name())

	if r.shouldOpenDevice(devicePath) {
		return true, devicePath
	}

	return false, ""
}

func (r *MonitoringDeviceReader) shouldOpenDevice(devicePath string) bool {
	if !LooksLikeTouchDevice(devicePath) {
		return false
	}

	r.lock.RLock()
	defer r.lock.RUnlock()

	_, ok := r.devicesList[devicePath]

	return !ok
}
