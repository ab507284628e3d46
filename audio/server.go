// =================================================================================
//
//			fox-fx - https://www.foxhollow.cc/projects/fox-fx/
//
//		 fox-fx runs a live chain of audio effect plugins between the
//	  inputs and outputs of the JACK audio server and reports meters
//
//		 Copyright (c) 2024 Steve Cross <flip@foxhollow.cc>
//
//			Licensed under the Apache License, Version 2.0 (the "License");
//			you may not use this file except in compliance with the License.
//			You may obtain a copy of the License at
//
//			     http://www.apache.org/licenses/LICENSE-2.0
//
//			Unless required by applicable law or agreed to in writing, software
//			distributed under the License is distributed on an "AS IS" BASIS,
//			WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//			See the License for the specific language governing permissions and
//			limitations under the License.
//
// =================================================================================

//go:build !headless

package audio

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
	"unsafe"

	"github.com/xthexder/go-jack"
)

const jackdStartTimeout = 10 * time.Second

type jackPort struct {
	portDirection PortDirection
	myName        string
	connectTo     string
	jackPort      *jack.Port
	connected     bool
}

// RolePorts are the four JACK ports that carry one role's stereo signal in
// and out of the client.
type RolePorts struct {
	role  string
	ports [portCount]*jackPort
}

// Buffers returns the JACK buffers for the current cycle as float32 slices.
// Safe to call from the process callback.
func (rp *RolePorts) Buffers(nframes uint32) (inL, inR, outL, outR []float32) {
	return samples(rp.ports[InLeft].jackPort.GetBuffer(nframes)),
		samples(rp.ports[InRight].jackPort.GetBuffer(nframes)),
		samples(rp.ports[OutLeft].jackPort.GetBuffer(nframes)),
		samples(rp.ports[OutRight].jackPort.GetBuffer(nframes))
}

func (rp *RolePorts) Role() string {
	return rp.role
}

type JackServer struct {
	clientName string
	verbose    bool

	roles []*RolePorts

	jackClient *jack.Client

	cmd *exec.Cmd
}

func NewServer(clientName string) *JackServer {
	return &JackServer{
		clientName: clientName,
		roles:      make([]*RolePorts, 0),
	}
}

// StartServer spawns jackd and waits until its driver reports running.
// audioInterface is "<driver>/<device>", e.g. "alsa/hw:0".
func (server *JackServer) StartServer(jackdBinary string, audioInterface string, sampleRate int, framesPerPeriod int) error {
	driver, device, found := strings.Cut(audioInterface, "/")
	if !found {
		return fmt.Errorf("audio interface must be <driver>/<device>: %s", audioInterface)
	}

	server.cmd = exec.Command(
		jackdBinary,
		"-v",
		fmt.Sprintf("-d%s", driver),
		fmt.Sprintf("-d%s", device),
		fmt.Sprintf("-r%d", sampleRate),
		fmt.Sprintf("-p%d", framesPerPeriod),
	)

	stdout, err := server.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to attach to jackd stdout: %w", err)
	}

	slog.Info("Starting JACK server...")

	if err = server.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start jackd: %w", err)
	}

	ready := make(chan bool, 1)

	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := scanner.Text()

			if server.verbose {
				slog.Info("jackd: " + line)
			} else {
				slog.Debug("jackd: " + line)
			}

			if strings.Contains(line, "driver is running...") {
				select {
				case ready <- true:
				default:
				}
			}
		}
	}()

	select {
	case <-ready:
		return nil
	case <-time.After(jackdStartTimeout):
		server.StopServer()
		return errors.New("timed out waiting for jackd to start")
	}
}

// SetVerbose logs jackd output at info level instead of debug.
func (server *JackServer) SetVerbose(verbose bool) {
	server.verbose = verbose
}

func (server *JackServer) StopServer() {
	if server == nil {
		return
	}

	server.Disconnect()

	if server.cmd != nil && server.cmd.Process != nil {
		server.cmd.Process.Kill()
		server.cmd.Wait()
		server.cmd = nil
	}
}

func (server *JackServer) Connect() error {
	slog.Info("Connecting to JACK server")

	var jackStatus int
	server.jackClient, jackStatus = jack.ClientOpen(server.clientName, jack.NoStartServer)

	if jackStatus != 0 {
		return fmt.Errorf("JACK status: %s", jack.StrError(jackStatus))
	}

	slog.Info("JACK server connected")

	return nil
}

func (server *JackServer) Disconnect() {
	if server.jackClient != nil {
		server.jackClient.Close()
		server.jackClient = nil
	}
}

func (server *JackServer) GetSampleRate() int {
	return int(server.jackClient.GetSampleRate())
}

func (server *JackServer) GetFramesPerPeriod() int {
	return int(server.jackClient.GetBufferSize())
}

// AddRole declares the ports for one processing role. sources are the
// external ports feeding the role, sinks the ones it plays into; either may
// be shorter than two, missing entries stay unconnected.
func (server *JackServer) AddRole(role string, sources []string, sinks []string) *RolePorts {
	rp := &RolePorts{role: role}

	for i := range rp.ports {
		index := PortIndex(i)
		port := &jackPort{
			portDirection: In,
			myName:        role + "_" + portNames[i],
		}

		channel := i % 2

		if index >= OutLeft {
			port.portDirection = Out

			if channel < len(sinks) {
				port.connectTo = sinks[channel]
			}
		} else if channel < len(sources) {
			port.connectTo = sources[channel]
		}

		rp.ports[i] = port
	}

	server.roles = append(server.roles, rp)

	return rp
}

func (server *JackServer) RegisterPorts() error {
	slog.Info("Registering audio ports...")

	for _, rp := range server.roles {
		for _, port := range rp.ports {
			var jackDirection uint64 = jack.PortIsInput

			if port.portDirection == Out {
				jackDirection = jack.PortIsOutput
			}

			port.jackPort = server.jackClient.PortRegister(port.myName, jack.DEFAULT_AUDIO_TYPE, jackDirection, 0)
			if port.jackPort == nil {
				return fmt.Errorf("failed to register port %s", port.myName)
			}

			slog.Debug("Registered port " + port.myName)
		}
	}

	return nil
}

func (server *JackServer) SetProcessCallback(callback func(nframes uint32) int) error {
	if code := server.jackClient.SetProcessCallback(callback); code != 0 {
		return fmt.Errorf("failed to set process callback: %s", jack.StrError(code))
	}

	return nil
}

func (server *JackServer) SetErrorCallback(callback func(string)) {
	jack.SetErrorFunction(callback)
}

func (server *JackServer) SetInfoCallback(callback func(string)) {
	jack.SetInfoFunction(callback)
}

func (server *JackServer) SetShutdownCallback(callback func()) {
	server.jackClient.OnShutdown(callback)
}

func (server *JackServer) SetXrunCallback(callback func() int) {
	server.jackClient.SetXRunCallback(callback)
}

func (server *JackServer) ActivateClient() error {
	if code := server.jackClient.Activate(); code != 0 {
		return fmt.Errorf("failed to activate client: %s", jack.StrError(code))
	}

	return nil
}

// ConnectPorts links every role port to its configured external port.
// Failures are logged and leave that port unconnected.
func (server *JackServer) ConnectPorts() {
	slog.Info("Connecting audio ports")

	for _, rp := range server.roles {
		for _, port := range rp.ports {
			if port.connectTo == "" {
				continue
			}

			myName := fmt.Sprintf("%s:%s", server.clientName, port.myName)
			src, dst := port.connectTo, myName

			if port.portDirection == Out {
				src, dst = myName, port.connectTo
			}

			if code := server.jackClient.Connect(src, dst); code != 0 {
				slog.Warn(fmt.Sprintf("Failed to connect %s to %s: %s", src, dst, jack.StrError(code)))
				continue
			}

			slog.Debug(fmt.Sprintf("Connected port %s to port %s", src, dst))
			port.connected = true
		}
	}
}

// samples reinterprets a JACK buffer without copying it.
func samples(buf []jack.AudioSample) []float32 {
	if len(buf) == 0 {
		return nil
	}

	return unsafe.Slice((*float32)(unsafe.Pointer(unsafe.SliceData(buf))), len(buf))
}
