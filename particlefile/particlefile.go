// Package particlefile reads and writes the whitespace-delimited particle
// text format: one particle per line, "x y [z] type".
package particlefile

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/s417-lama/sph-dambreaking/particle"
	"github.com/s417-lama/sph-dambreaking/sphmath"
)

// Load reads a particle file, assigning every particle the given mass,
// density, and pressure and a zero velocity (the file itself only carries
// position and type).
func Load(path string, mass, initialPressure, dens0 sphmath.Real) ([]particle.Particle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening particle file %q: %w", path, err)
	}
	defer f.Close()

	var particles []particle.Particle
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != sphmath.Dim+1 {
			return nil, fmt.Errorf("particle file %q line %d: expected %d fields, got %d",
				path, lineNo, sphmath.Dim+1, len(fields))
		}

		var pos sphmath.Vec
		for k := 0; k < sphmath.Dim; k++ {
			v, err := strconv.ParseFloat(fields[k], 64)
			if err != nil {
				return nil, fmt.Errorf("particle file %q line %d: invalid coordinate %q: %w",
					path, lineNo, fields[k], err)
			}
			pos[k] = sphmath.Real(v)
		}

		typeCode, err := strconv.Atoi(fields[sphmath.Dim])
		if err != nil {
			return nil, fmt.Errorf("particle file %q line %d: invalid type %q: %w",
				path, lineNo, fields[sphmath.Dim], err)
		}
		pType := particle.Type(typeCode)
		if pType != particle.Fluid && pType != particle.Wall {
			return nil, fmt.Errorf("particle file %q line %d: unknown type %d", path, lineNo, typeCode)
		}

		particles = append(particles, particle.Particle{
			Mass: mass,
			Pos:  pos,
			Type: pType,
			Dens: dens0,
			Pres: initialPressure,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading particle file %q: %w", path, err)
	}
	return particles, nil
}

// Save writes particles to path in the current in-memory order, one line
// per particle as "x y [z] type".
func Save(path string, particles []particle.Particle) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating particle file %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, p := range particles {
		for k := 0; k < sphmath.Dim; k++ {
			fmt.Fprintf(w, "%g ", p.Pos[k])
		}
		fmt.Fprintf(w, "%d\n", p.Type)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing particle file %q: %w", path, err)
	}
	return nil
}
