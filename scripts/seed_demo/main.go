package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/decodeit/internal/config"
	"github.com/decodeit/internal/db"
	"github.com/decodeit/internal/puzzle"
	"github.com/decodeit/internal/service"
	"gorm.io/gorm"
)

type demoUser struct {
	email    string
	password string
	birthday string
	days     int
	withPics bool
}

var demoUsers = []demoUser{
	{"ada@example.com", "demo1234", "1990-08-01", 6, true},
	{"bob@example.com", "demo1234", "1988-03-25", 3, false},
	{"cy@example.com", "demo1234", "1995-12-30", 1, true},
}

var demoDeeds = []string{
	"Hold the door for a stranger.",
	"Write a thank you note to a teacher.",
	"Bring a coworker a cup of coffee.",
	"Pick up litter in your neighbourhood.",
	"Call a friend you have not spoken to lately.",
	"Leave a kind review for a local shop.",
}

// 演示数据生成器
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成演示数据...")
	if err := seedDemo(context.Background(), db.DB, time.Now()); err != nil {
		log.Fatal("演示数据生成失败:", err)
	}

	fmt.Println("演示数据生成完成！")
	for _, u := range demoUsers {
		fmt.Printf("用户: %s (密码: %s)\n", u.email, u.password)
	}
}

// seedDemo 为每个演示用户补齐截至 today 的连续善行与小游戏记录。
// 已有历史的用户会被跳过，可重复执行。
func seedDemo(ctx context.Context, gdb *gorm.DB, today time.Time) error {
	for _, u := range demoUsers {
		if err := db.EnsureUser(u.email, u.password, u.birthday); err != nil {
			return fmt.Errorf("ensure %s: %w", u.email, err)
		}

		var user db.User
		if err := gdb.Where("email = ?", u.email).First(&user).Error; err != nil {
			return err
		}

		var deeds int64
		if err := gdb.Model(&db.Deed{}).Where("user_id = ?", user.ID).Count(&deeds).Error; err != nil {
			return err
		}
		if deeds > 0 {
			fmt.Printf("%s 已有善行记录，跳过\n", u.email)
			continue
		}

		var clock time.Time
		now := func() time.Time { return clock }
		progress := service.NewProgressService(gdb, service.NewGormProgressStore(gdb), now)
		games := service.NewGameService(gdb, now)

		for i := u.days - 1; i >= 0; i-- {
			clock = today.AddDate(0, 0, -i)
			in := service.DeedCompletion{Deed: demoDeeds[i%len(demoDeeds)]}
			if u.withPics && i%2 == 0 {
				in.Image = fmt.Sprintf("/static/uploads/demo-%s-%d.jpg", db.EmailLocalPart(u.email), i)
			}
			if _, _, err := progress.CompleteDeed(ctx, user.ID, in); err != nil {
				return fmt.Errorf("complete deed for %s: %w", u.email, err)
			}

			result := service.GameResultInput{Game: service.GameBottle, Won: i%3 != 1, Guesses: 2 + i%3}
			if !result.Won {
				result.Guesses = puzzle.BottleMaxGuesses
				result.Reason = "out-of-guesses"
			}
			if err := games.Record(ctx, user.ID, result); err != nil {
				return fmt.Errorf("record game for %s: %w", u.email, err)
			}
		}
		fmt.Printf("✅ %s: %d 天善行\n", u.email, u.days)
	}
	return nil
}
