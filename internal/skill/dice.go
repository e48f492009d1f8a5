package skill

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"clova-webhook/clova"
	"clova-webhook/response"
	"clova-webhook/speech"
)

// DiceSoundURL is played between the announcement and the result.
const DiceSoundURL = "https://ssl.pstatic.net/static/clova/service/native_extensions/dice/rolling_dice_sound.mp3"

// Dice registers the dice sample. The number of dice comes from the diceCount
// slot and defaults to one.
func Dice(ext *clova.Extension, rnd Rand) error {
	if ext == nil {
		return errors.New("skill: extension must not be nil")
	}
	d := &dice{rand: defaultRand(rnd)}

	ext.Launch(func(_ context.Context, call *clova.Call) (response.Renderer, error) {
		call.Session.Attributes["intent"] = "ThrowDiceIntent"
		return response.Question(speech.InKorean("몇개의 주사위를 던질까요?")), nil
	})
	ext.SessionEnded(func(context.Context, *clova.Call) (response.Renderer, error) {
		return response.Statement(speech.InKorean("주사위 놀이 익스텐션을 종료합니다.")), nil
	})
	if err := ext.Intent(clova.Intent{
		Name:     "ThrowDiceIntent",
		Params:   []string{"dice_cnt"},
		Mapping:  map[string]string{"dice_cnt": "diceCount"},
		Convert:  map[string]clova.Converter{"dice_cnt": clova.ToInt},
		Defaults: map[string]clova.Default{"dice_cnt": clova.Literal(1)},
		Handle:   d.throw,
	}); err != nil {
		return err
	}
	return ext.Intent(clova.Intent{
		Name: "Clova.GuideIntent",
		Handle: func(context.Context, *clova.Call, clova.Args) (response.Renderer, error) {
			return response.Question(speech.InKorean("주사위 한 개 던져줘, 라고 시도해보세요.")), nil
		},
	})
}

type dice struct {
	rand Rand
}

func (d *dice) throw(_ context.Context, call *clova.Call, args clova.Args) (response.Renderer, error) {
	count, ok := args.Int("dice_cnt")
	if !ok || count < 1 {
		call.Logger.Info("unusable dice count", "value", args.At(0), "convert_errors", len(call.ConvertErrors()))
		count = 1
	}

	return response.Statement(speech.InKorean("주사위를 " + strconv.Itoa(count) + "개 던집니다.")).
		AddSpeech(speech.Link(DiceSoundURL)).
		AddSpeech(speech.InKorean(d.answer(count))), nil
}

func (d *dice) answer(count int) string {
	rolls := make([]string, count)
	total := 0
	for i := range rolls {
		n := d.rand(6) + 1
		total += n
		rolls[i] = strconv.Itoa(n)
	}
	switch {
	case count == 1:
		return fmt.Sprintf("결과는 %d입니다.", total)
	case count < 4:
		return fmt.Sprintf("결과는 %s이며 합은 %d입니다.", strings.Join(rolls, ", "), total)
	default:
		return fmt.Sprintf("주사위 %d개의 합은 %d입니다.", count, total)
	}
}
