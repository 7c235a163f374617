package main

import (
	"errors"
	"strconv"
	"time"
)

type optionalString struct {
	set   bool
	value string
}

func (o *optionalString) String() string {
	return o.value
}

func (o *optionalString) Set(v string) error {
	o.set = true
	o.value = v
	return nil
}

type optionalDuration struct {
	set   bool
	value time.Duration
}

func (o *optionalDuration) String() string {
	if !o.set {
		return ""
	}
	return o.value.String()
}

func (o *optionalDuration) Set(v string) error {
	if v == "" {
		return errors.New("value required")
	}
	val, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	if val <= 0 {
		return errors.New("duration must be positive")
	}
	o.set = true
	o.value = val
	return nil
}

type optionalBool struct {
	set   bool
	value bool
}

func (o *optionalBool) String() string {
	if !o.set {
		return ""
	}
	if o.value {
		return "true"
	}
	return "false"
}

func (o *optionalBool) Set(v string) error {
	if v == "" {
		v = "true"
	}
	val, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	o.set = true
	o.value = val
	return nil
}

func (o *optionalBool) IsBoolFlag() bool {
	return true
}
