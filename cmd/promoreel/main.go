package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ivlev/promoreel/internal/batch"
	"github.com/ivlev/promoreel/internal/config"
	"github.com/ivlev/promoreel/internal/engine"
	"github.com/ivlev/promoreel/internal/logging"
	"github.com/ivlev/promoreel/internal/motion"
	"github.com/ivlev/promoreel/internal/system"
)

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()

	zipPtr := flag.String("zip", "", "Архив с исходными видео (по умолчанию: самый свежий .zip с видео в -dir)")
	csvPtr := flag.String("csv", "", "Таблица концертов (по умолчанию: самый свежий .csv в -dir)")
	fontPtr := flag.String("font", "", "Шрифт TTF/OTF (по умолчанию: самый свежий в -dir, иначе встроенный)")
	dirPtr := flag.String("dir", envOr("PROMOREEL_DIR", "input"), "Папка, где искать архив, таблицу и шрифт")
	outputPtr := flag.String("output", envOr("PROMOREEL_OUTPUT", "output"), "Папка для готовых роликов")

	presetPtr := flag.String("preset", "", "YAML-пресет стиля")
	savePresetPtr := flag.String("save-preset", "", "Сохранить итоговый стиль в YAML и выйти")
	motionPtr := flag.String("motion", string(motion.Static), "Анимация: "+variantList())
	textColorPtr := flag.String("text-color", "#ffffff", "Цвет текста")
	strokeColorPtr := flag.String("stroke-color", "#000000", "Цвет обводки и тени")
	strokeWidthPtr := flag.Int("stroke-width", 4, "Толщина обводки (px)")
	shadowPtr := flag.Int("shadow", 6, "Смещение тени (px, 0 - без тени)")
	titleSizePtr := flag.Int("title-size", 150, "Максимальный размер заголовка")
	bodySizePtr := flag.Int("body-size", 120, "Максимальный размер остального текста")
	offsetXPtr := flag.Int("offset-x", 0, "Сдвиг текста по горизонтали (px)")
	offsetYPtr := flag.Int("offset-y", 0, "Сдвиг текста по вертикали (px)")
	timingPtr := flag.String("timing", "canonical", "Разбивка по времени: canonical (20/65/15) или legacy (25/55/20)")
	headlinePtr := flag.String("headline", config.DefaultHeadline, "Текст заставки (\\n - перенос строки)")
	qrPtr := flag.Bool("ticket-qr", false, "QR-код ссылки на билеты под призывом")
	seedPtr := flag.Int64("seed", 0, "Seed для shake (0 - случайный)")

	fpsPtr := flag.Int("fps", config.DefaultFPS, "FPS")
	workersPtr := flag.Int("workers", 0, "Параллельных роликов (0 - по CPU и памяти)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	x264PresetPtr := flag.String("x264-preset", config.DefaultX264Preset, "Пресет libx264")
	logLevelPtr := flag.String("log-level", envOr("PROMOREEL_LOG_LEVEL", "info"), "Уровень логов: debug, info, warn, error")

	flag.Parse()

	log := logging.New(*logLevelPtr, true)
	system.InitResourceLimits(log)

	// Стиль: значения по умолчанию -> пресет -> явно заданные флаги
	style := config.Default()
	if *presetPtr != "" {
		loaded, err := config.LoadPreset(*presetPtr)
		if err != nil {
			log.Fatal().Err(err).Msg("[-] Ошибка чтения пресета")
		}
		style = loaded
		fmt.Printf("[*] Пресет: %s\n", *presetPtr)
	}

	var flagErr error
	flag.Visit(func(f *flag.Flag) {
		var err error
		switch f.Name {
		case "motion":
			style.Motion, err = motion.ParseVariant(*motionPtr)
		case "text-color":
			style.TextColor, err = config.ParseHex(*textColorPtr)
		case "stroke-color":
			style.OutlineColor, err = config.ParseHex(*strokeColorPtr)
		case "stroke-width":
			style.OutlineWidth = *strokeWidthPtr
		case "shadow":
			style.ShadowOffset = *shadowPtr
		case "title-size":
			style.TitleSize = *titleSizePtr
		case "body-size":
			style.BodySize = *bodySizePtr
		case "offset-x":
			style.OffsetX = *offsetXPtr
		case "offset-y":
			style.OffsetY = *offsetYPtr
		case "timing":
			style.Timing = *timingPtr
		case "headline":
			style.Headline = strings.ReplaceAll(*headlinePtr, `\n`, "\n")
		case "ticket-qr":
			style.TicketQR = *qrPtr
		case "seed":
			style.Seed = *seedPtr
		}
		if err != nil && flagErr == nil {
			flagErr = fmt.Errorf("-%s: %w", f.Name, err)
		}
	})
	if flagErr != nil {
		log.Fatal().Err(flagErr).Msg("[-] Некорректный флаг")
	}
	if err := style.Validate(); err != nil {
		log.Fatal().Err(err).Msg("[-] Некорректный стиль")
	}

	if *savePresetPtr != "" {
		if err := config.SavePreset(style, *savePresetPtr); err != nil {
			log.Fatal().Err(err).Msg("[-] Не удалось сохранить пресет")
		}
		fmt.Printf("[+++] Пресет сохранён: %s\n", *savePresetPtr)
		return
	}

	cfg := config.Config{
		ZipPath:    *zipPtr,
		CSVPath:    *csvPtr,
		FontPath:   *fontPtr,
		OutputDir:  *outputPtr,
		FPS:        *fpsPtr,
		Workers:    *workersPtr,
		Quality:    *qualityPtr,
		X264Preset: *x264PresetPtr,
		Style:      style,
	}
	resolveInputs(&cfg, *dirPtr, log)

	cfg.VideoEncoder = system.GetBestH264Encoder()
	if cfg.VideoEncoder != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", cfg.VideoEncoder)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = system.RecommendedWorkers()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("[-] Ошибка конфигурации")
	}

	fmt.Println(titleStyle.Render("--- [PROMOREEL: BATCH] ---"))
	fmt.Printf("[*] Видео: %s | Таблица: %s\n", cfg.ZipPath, cfg.CSVPath)
	fmt.Printf("[*] Анимация: %s | %d FPS | Воркеров: %d\n", style.Motion, cfg.FPS, cfg.Workers)
	fmt.Println("-----------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	renderer := engine.NewRenderer(engine.OptionsFrom(cfg), log)

	var mu sync.Mutex
	start := time.Now()
	sum, err := batch.Run(ctx, cfg, renderer, log, func(s batch.Status, done, total int) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Println(statusLine(s, done, total))
	})
	if err != nil {
		log.Fatal().Err(err).Msg("[-] Ошибка пакета")
	}

	fmt.Println(summaryBox(sum))
	fmt.Printf("[*] Время: %s\n", time.Since(start).Round(time.Second))
	if sum.Failed > 0 {
		os.Exit(1)
	}
	fmt.Printf("[+++] Успех! Результаты: %s\n", cfg.OutputDir)
}

// resolveInputs fills missing paths with the newest matching files in dir.
func resolveInputs(cfg *config.Config, dir string, log zerolog.Logger) {
	if cfg.ZipPath != "" && cfg.CSVPath != "" {
		return
	}
	in, err := batch.Discover(dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", dir).Msg("[-] Положите архив с видео и CSV в папку")
	}
	if cfg.ZipPath == "" {
		cfg.ZipPath = in.Zip
		fmt.Printf("[*] Выбран архив: %s\n", cfg.ZipPath)
	}
	if cfg.CSVPath == "" {
		cfg.CSVPath = in.CSV
		fmt.Printf("[*] Выбрана таблица: %s\n", cfg.CSVPath)
	}
	if cfg.FontPath == "" && in.Font != "" {
		cfg.FontPath = in.Font
		fmt.Printf("[*] Выбран шрифт: %s\n", cfg.FontPath)
	}
}

func variantList() string {
	names := make([]string, len(motion.Variants))
	for i, v := range motion.Variants {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}
