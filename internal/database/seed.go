package database

import (
	"context"
	"fmt"

	"github.com/example/vocabot/pkg/models"
)

// sampleWords is the stock catalog used when no word list has been imported
// yet. Duplicated english entries are absorbed by the unique constraint.
var sampleWords = [][2]string{
	{"apple", "olma"}, {"book", "kitob"}, {"house", "uy"}, {"car", "mashina"},
	{"tree", "daraxt"}, {"water", "suv"}, {"sun", "quyosh"}, {"moon", "oy"},
	{"star", "yulduz"}, {"flower", "gul"}, {"cat", "mushuk"}, {"dog", "it"},
	{"bird", "qush"}, {"fish", "baliq"}, {"food", "oziq-ovqat"}, {"drink", "ichimlik"},
	{"city", "shahar"}, {"country", "davlat"}, {"world", "dunyo"}, {"time", "vaqt"},
	{"day", "kun"}, {"night", "tun"}, {"morning", "ertalab"}, {"evening", "kechqurun"},
	{"friend", "do'st"}, {"family", "oila"}, {"love", "sevgi"}, {"happy", "xursand"},
	{"sad", "xafa"}, {"big", "katta"}, {"small", "kichik"}, {"new", "yangi"},
	{"old", "eski"}, {"good", "yaxshi"}, {"bad", "yomon"}, {"beautiful", "chiroyli"},
	{"ugly", "xunuk"}, {"fast", "tez"}, {"slow", "sekin"}, {"hot", "issiq"},
	{"cold", "sovuq"}, {"open", "ochiq"}, {"close", "yopiq"}, {"read", "o'qimoq"},
	{"write", "yozmoq"}, {"speak", "gapirmoq"}, {"listen", "tinglamoq"}, {"see", "ko'rmoq"},
	{"hear", "eshitmoq"}, {"walk", "yurmoq"}, {"run", "yugurmoq"}, {"sleep", "uxlamoq"},
	{"eat", "yemoq"}, {"work", "ishlamoq"}, {"play", "o'ynamoq"},
	{"learn", "o'rganmoq"}, {"teach", "o'rgatmoq"}, {"help", "yordam bermoq"}, {"ask", "so'ramoq"},
	{"answer", "javob bermoq"}, {"buy", "sotib olmoq"}, {"sell", "sotmoq"}, {"give", "bermoq"},
	{"take", "olmoq"}, {"come", "kelmoq"}, {"go", "bormoq"}, {"sit", "o'tirmoq"},
	{"stand", "turmoq"}, {"find", "topmoq"}, {"lose", "yo'qotmoq"}, {"know", "bilmoq"},
	{"think", "o'ylamoq"}, {"feel", "his qilmoq"}, {"want", "xohlamoq"}, {"need", "muhtoj bo'lmoq"},
	{"use", "foydalanmoq"}, {"make", "qilmoq"}, {"do", "bajarmoq"}, {"say", "aytmoq"},
	{"tell", "gapirib bermoq"}, {"show", "ko'rsatmoq"}, {"start", "boshlamoq"}, {"stop", "to'xtatmoq"},
	{"finish", "tugatmoq"}, {"begin", "boshlamoq"}, {"end", "tugatmoq"}, {"wait", "kutmoq"},
	{"send", "yubormoq"}, {"receive", "qabul qilmoq"}, {"bring", "olib kelmoq"}, {"carry", "olib bormoq"},
	{"clean", "tozalamoq"}, {"dirty", "iflos"}, {"empty", "bo'sh"}, {"full", "to'la"},
	{"heavy", "og'ir"}, {"light", "engil"}, {"long", "uzun"}, {"short", "qisqa"},
	{"wide", "keng"}, {"narrow", "tor"}, {"deep", "chuqur"}, {"shallow", "sayoz"},
	{"early", "erta"}, {"late", "kech"}, {"first", "birinchi"}, {"last", "oxirgi"},
	{"next", "keyingi"}, {"previous", "oldingi"}, {"same", "bir xil"}, {"different", "har xil"},
}

// SeedSampleWords inserts the stock word list, skipping entries already
// present. Returns the number of words inserted.
func SeedSampleWords(ctx context.Context, words *WordRepository) (int, error) {
	inserted := 0
	for _, pair := range sampleWords {
		created, err := words.CreateIfAbsent(ctx, &models.Word{
			EnglishWord: pair[0],
			Translation: pair[1],
		})
		if err != nil {
			return inserted, fmt.Errorf("failed to seed word %q: %v", pair[0], err)
		}
		if created {
			inserted++
		}
	}
	return inserted, nil
}
