package main

import "periph.io/x/conn/v3/physic"

// frequencyValue adapts physic.Frequency to pflag.Value.
type frequencyValue struct {
	f *physic.Frequency
}

func (v *frequencyValue) String() string {
	if v.f == nil {
		return ""
	}
	return v.f.String()
}

func (v *frequencyValue) Set(s string) error {
	return v.f.Set(s)
}

func (v *frequencyValue) Type() string {
	return "frequency"
}
