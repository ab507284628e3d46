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
package util

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v2"
)

const LevelTrace = slog.Level(-10)

var ErrYamlNotFound = errors.New("no yaml file found")

func FileExists(path string) bool {
	// if an error occurred or its a directory, we throw up
	if stat, err := os.Stat(path); err != nil || stat.IsDir() {
		return false
	}

	return true
}

func DirectoryExists(testDir string) bool {
	if stat, err := os.Stat(testDir); err != nil || !stat.IsDir() {
		return false
	}

	return true
}

func ResolveHomeDirPath(testPath string) (string, error) {
	if strings.HasPrefix(testPath, "~/") {
		homeDir, err := os.UserHomeDir()

		if err != nil {
			return "", errors.New("could not find user home dir: " + err.Error())
		}

		return path.Join(homeDir, testPath[2:]), nil
	}

	return testPath, nil
}

// FindYamlFile resolves a file name the way every config and profile is
// looked up: absolute, home relative, next to the executable, the working
// directory and finally ~/.config/fox-fx.
func FindYamlFile(fileName string) (string, error) {
	if path.IsAbs(fileName) {
		if !FileExists(fileName) {
			return "", fmt.Errorf("%w: %s does not exist", ErrYamlNotFound, fileName)
		}

		return fileName, nil
	}

	if strings.HasPrefix(fileName, "~/") {
		testFilePath, err := ResolveHomeDirPath(fileName)
		if err != nil {
			return "", err
		}

		if FileExists(testFilePath) {
			return testFilePath, nil
		}

		return "", fmt.Errorf("%w: %s", ErrYamlNotFound, fileName)
	}

	candidates := make([]string, 0, 3)

	// check path where executable lives
	if binPath, err := os.Executable(); err == nil {
		candidates = append(candidates, path.Join(filepath.Dir(binPath), fileName))
	}

	// check working directory
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, path.Join(cwd, fileName))
	}

	// check user config directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, path.Join(homeDir, ".config", "fox-fx", fileName))
	}

	for _, candidate := range candidates {
		if FileExists(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrYamlNotFound, fileName)
}

func ReadYamlFile(cfg interface{}, fileName string) error {
	filePath, err := FindYamlFile(fileName)
	if err != nil {
		return err
	}

	slog.Info("Reading yaml from " + filePath)

	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.SetStrict(true)

	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	return nil
}

func TraceLog(message string, args ...any) {
	slog.Log(context.Background(), LevelTrace, message, args...)
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func FormatDuration(duration float64) string {
	hours := 0
	minutes := 0
	seconds := 0

	if duration > 3600 {
		hours = int(duration) / 3600
		duration -= float64(hours) * 3600.0
	}

	if duration > 60 {
		minutes = int(duration) / 60
		duration -= float64(minutes) * 60
	}

	seconds = int(duration)
	duration -= float64(seconds)

	mseconds := int(duration * 1000)

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, mseconds)
}

func FindJackdBinary() string {
	possiblePaths := []string{
		"/usr/bin/jackd",
		"/usr/local/bin/jackd",
	}

	for _, path := range possiblePaths {
		if FileExists(path) {
			return path
		}
	}

	return ""
}
