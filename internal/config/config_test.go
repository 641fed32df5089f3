package config_test

import (
	"math/rand"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cosray/internal/config"
	"github.com/san-kum/cosray/internal/unit"
)

var _ = Describe("Config", func() {
	Describe("defaults", func() {
		It("matches the engine defaults", func() {
			cfg := config.DefaultConfig()
			Expect(cfg.Field.Model).To(Equal("uniform"))
			Expect(cfg.Engine.Tolerance).To(Equal(1e-4))
			Expect(cfg.Engine.MinStep).To(BeNumerically("~", 10, 1e-9))
			Expect(cfg.Engine.MaxStep).To(BeNumerically("~", 1000, 1e-6))
			Expect(cfg.Engine.Epsilon).To(Equal(0.1))
			Expect(cfg.Validate()).To(Succeed())
		})
	})

	Describe("load and save", func() {
		It("round-trips through yaml", func() {
			path := filepath.Join(GinkgoT().TempDir(), "run.yaml")

			cfg := config.DefaultConfig()
			cfg.Field.Model = "turbulent"
			cfg.Run.Seed = 99
			Expect(config.Save(path, cfg)).To(Succeed())

			loaded, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(cfg))
		})

		It("rejects missing files", func() {
			_, err := config.Load("does-not-exist.yaml")
			Expect(err).To(HaveOccurred())
		})

		It("rejects invalid configurations on load", func() {
			path := filepath.Join(GinkgoT().TempDir(), "bad.yaml")
			cfg := config.DefaultConfig()
			cfg.Field.Model = "dynamo"
			Expect(config.Save(path, cfg)).To(Succeed())

			_, err := config.Load(path)
			Expect(err).To(MatchError(ContainSubstring("unknown field model")))
		})
	})

	Describe("validation", func() {
		It("flags non-positive run sizes", func() {
			cfg := config.DefaultConfig()
			cfg.Run.Candidates = 0
			Expect(cfg.Validate()).NotTo(Succeed())

			cfg = config.DefaultConfig()
			cfg.Run.Steps = -1
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("flags non-positive source energy", func() {
			cfg := config.DefaultConfig()
			cfg.Source.Energy = 0
			Expect(cfg.Validate()).NotTo(Succeed())
		})
	})

	Describe("presets", func() {
		It("lists known presets in order", func() {
			Expect(config.ListPresets()).To(Equal([]string{
				"extragalactic", "fieldline", "galactic", "isotropic",
			}))
		})

		It("returns valid, independent copies", func() {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				Expect(cfg).NotTo(BeNil(), name)
				Expect(cfg.Validate()).To(Succeed(), name)

				cfg.Run.Seed = 12345
				Expect(config.GetPreset(name).Run.Seed).NotTo(Equal(int64(12345)))
			}
		})

		It("returns nil for unknown presets", func() {
			Expect(config.GetPreset("warpdrive")).To(BeNil())
		})
	})

	Describe("builders", func() {
		It("builds the configured field model", func() {
			cfg := config.GetPreset("galactic")
			f, err := cfg.BuildField(rand.New(rand.NewSource(cfg.Run.Seed)))
			Expect(err).NotTo(HaveOccurred())
			Expect(f).NotTo(BeNil())
		})

		It("applies engine parameters", func() {
			cfg := config.DefaultConfig()
			cfg.Engine.Epsilon = 0.25
			cfg.Engine.MinStep = 5
			cfg.Engine.MaxStep = 50

			f, err := cfg.BuildField(rand.New(rand.NewSource(1)))
			Expect(err).NotTo(HaveOccurred())

			eng, err := cfg.BuildEngine(f)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Epsilon()).To(Equal(0.25))
			Expect(eng.MinimumStep()).To(BeNumerically("~", 5*unit.Parsec, 1e6))
			Expect(eng.MaximumStep()).To(BeNumerically("~", 50*unit.Parsec, 1e7))
		})

		It("rejects inverted step bounds", func() {
			cfg := config.DefaultConfig()
			cfg.Engine.MinStep = 100
			cfg.Engine.MaxStep = 10

			f, _ := cfg.BuildField(rand.New(rand.NewSource(1)))
			_, err := cfg.BuildEngine(f)
			Expect(err).To(HaveOccurred())
		})
	})
})
