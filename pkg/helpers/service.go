// BikeLink Core
// Copyright (c) 2026 The BikeLink Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of BikeLink Core.
//
// BikeLink Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// BikeLink Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with BikeLink Core.  If not, see <http://www.gnu.org/licenses/>.

//go:build linux || darwin

package helpers

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/BikeLinkProject/bikelink-core/pkg/config"
	"github.com/rs/zerolog/log"
)

// ServiceEntry starts the link service and returns its stop function.
type ServiceEntry func() (func() error, error)

// Service manages a background instance of the daemon through a PID file.
type Service struct {
	start     ServiceEntry
	stop      func() error
	tempDir   string
	extraArgs []string
}

type ServiceArgs struct {
	Entry ServiceEntry
	// TempDir overrides the PID file directory, mainly for tests.
	TempDir string
	// ExtraArgs are passed through to the relaunched binary, e.g. a config
	// directory override.
	ExtraArgs []string
}

func NewService(args ServiceArgs) (*Service, error) {
	tempDir := args.TempDir
	if tempDir == "" {
		tempDir = TempDir()
	}

	err := os.MkdirAll(tempDir, 0o750)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &Service{
		start:     args.Entry,
		tempDir:   tempDir,
		extraArgs: args.ExtraArgs,
	}, nil
}

func (s *Service) pidPath() string {
	return filepath.Join(s.tempDir, config.PidFile)
}

// Create new PID file using current process PID.
func (s *Service) createPidFile() error {
	pid := os.Getpid()
	err := os.WriteFile(s.pidPath(), []byte(strconv.Itoa(pid)), 0o600)
	if err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

func (s *Service) removePidFile() error {
	err := os.Remove(s.pidPath())
	if err != nil {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// Pid returns the process ID of the running service daemon, or 0 when no PID
// file exists.
func (s *Service) Pid() (int, error) {
	pid := 0

	if _, err := os.Stat(s.pidPath()); err == nil {
		//nolint:gosec // reads our own PID file for service management
		pidFile, err := os.ReadFile(s.pidPath())
		if err != nil {
			return pid, fmt.Errorf("error reading pid file: %w", err)
		}

		pidInt, err := strconv.Atoi(string(pidFile))
		if err != nil {
			return pid, fmt.Errorf("error parsing pid: %w", err)
		}

		pid = pidInt
	}

	return pid, nil
}

// Running returns true if the service daemon is running.
func (s *Service) Running() bool {
	pid, err := s.Pid()
	if err != nil {
		return false
	}

	if pid == 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))

	return err == nil
}

func (s *Service) stopService() error {
	log.Info().Msg("stopping service")

	err := s.stop()
	if err != nil {
		log.Error().Err(err).Msg("error stopping service")
		return err
	}

	err = s.removePidFile()
	if err != nil {
		log.Error().Err(err).Msg("error removing pid file")
		return err
	}

	return nil
}

// Set up signal handler to stop the service on SIGINT or SIGTERM. Exits the
// process on signal.
func (s *Service) setupStopService() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigs

		err := s.stopService()
		if err != nil {
			os.Exit(1)
		}

		os.Exit(0)
	}()
}

// Run the service in the foreground with a PID file, blocking until a stop
// signal arrives. This is the process that "-service start" spawns.
func (s *Service) startService() {
	if s.Running() {
		log.Error().Msg("service already running")
		os.Exit(1)
	}

	log.Info().Msg("starting service")

	err := s.createPidFile()
	if err != nil {
		log.Error().Err(err).Msg("error creating pid file")
		os.Exit(1)
	}

	err = syscall.Setpriority(syscall.PRIO_PROCESS, 0, 1)
	if err != nil {
		log.Error().Err(err).Msg("error setting nice level")
	}

	stop, err := s.start()
	if err != nil {
		log.Error().Err(err).Msg("error starting service")

		err = s.removePidFile()
		if err != nil {
			log.Error().Err(err).Msg("error removing pid file")
		}

		os.Exit(1)
	}

	s.stop = stop
	s.setupStopService()

	<-make(chan struct{})
}

// Start launches a new service daemon in the background.
func (s *Service) Start() error {
	if s.Running() {
		return errors.New("service already running")
	}

	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("error getting absolute binary path: %w", err)
	}

	args := append([]string{"-service", "exec"}, s.extraArgs...)
	// The child must outlive this process, so no context is attached.
	//nolint:gosec // relaunches our own binary
	cmd := exec.Command(exePath, args...)
	cmd.Env = os.Environ()

	err = cmd.Start()
	if err != nil {
		return fmt.Errorf("error starting service: %w", err)
	}

	return nil
}

// Stop the service daemon.
func (s *Service) Stop() error {
	if !s.Running() {
		return errors.New("service not running")
	}

	pid, err := s.Pid()
	if err != nil {
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	err = process.Signal(syscall.SIGTERM)
	if err != nil {
		return fmt.Errorf("failed to send SIGTERM to process: %w", err)
	}

	return nil
}

func (s *Service) Restart() error {
	if s.Running() {
		err := s.Stop()
		if err != nil {
			return err
		}
	}

	for s.Running() {
		time.Sleep(1 * time.Second)
	}

	err := s.Start()
	if err != nil {
		return err
	}

	return nil
}

// ServiceHandler dispatches a "-service" verb. The exec verb blocks for the
// life of the service; every other verb returns once it has acted.
func (s *Service) ServiceHandler(cmd *string) error {
	switch *cmd {
	case "exec":
		s.startService()
		return nil
	case "start":
		err := s.Start()
		if err != nil {
			log.Error().Msg(err.Error())
			return err
		}
		return nil
	case "stop":
		err := s.Stop()
		if err != nil {
			log.Error().Msg(err.Error())
			return err
		}
		return nil
	case "restart":
		err := s.Restart()
		if err != nil {
			log.Error().Msg(err.Error())
			return err
		}
		return nil
	case "status":
		if s.Running() {
			_, _ = fmt.Println("started")
			return nil
		}
		_, _ = fmt.Println("stopped")
		return errors.New("service not running")
	case "":
		return nil
	default:
		return fmt.Errorf("unknown service argument: %s", *cmd)
	}
}
